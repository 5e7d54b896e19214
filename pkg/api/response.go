package api

import (
	"fmt"
	"strings"
	"time"
)

type (
	// StreamEventType classifies entries in a socket event log
	StreamEventType string

	// StreamEvent is one timestamped entry in the event log accumulated
	// during a streaming exchange
	StreamEvent struct {
		Timestamp time.Time       `json:"timestamp"`
		Type      StreamEventType `json:"type"`
		Data      string          `json:"data,omitempty"`
	}

	// SentRequest echoes what was actually placed on the wire after variable
	// resolution, for audit and debugging
	SentRequest struct {
		Method  string            `json:"method,omitempty"`
		URL     string            `json:"url"`
		Headers map[string]string `json:"headers,omitempty"`
		Body    string            `json:"body,omitempty"`
	}

	// RequestResponse is the normalized outcome of executing a request.
	// Transport failures are represented as a response with StatusCode zero
	// and the error text as Body; executors never return an error for them
	RequestResponse struct {
		StatusCode int               `json:"status_code"`
		Status     string            `json:"status,omitempty"`
		Headers    map[string]string `json:"headers,omitempty"`
		Body       string            `json:"body,omitempty"`
		SizeBytes  int               `json:"size_bytes"`
		DurationMs int64             `json:"duration_ms"`
		Timestamp  time.Time         `json:"timestamp"`
		Sent       *SentRequest      `json:"sent,omitempty"`
		Events     []*StreamEvent    `json:"events,omitempty"`
	}
)

const (
	StreamConnected StreamEventType = "connected"
	StreamSent      StreamEventType = "sent"
	StreamReceived  StreamEventType = "received"
	StreamError     StreamEventType = "error"
	StreamClosed    StreamEventType = "closed"
)

// Failed reports whether the exchange never produced a protocol response
func (r *RequestResponse) Failed() bool {
	return r.StatusCode == 0
}

// ContentType returns the response content type header, matched without
// regard to case, or an empty string when none was recorded
func (r *RequestResponse) ContentType() string {
	for name, value := range r.Headers {
		if strings.EqualFold(name, "Content-Type") {
			return value
		}
	}
	return ""
}

// AddEvent appends an entry to the stream event log
func (r *RequestResponse) AddEvent(t StreamEventType, data string) {
	r.Events = append(r.Events, &StreamEvent{
		Timestamp: time.Now(),
		Type:      t,
		Data:      data,
	})
}

// EventLog renders the accumulated stream events as one line per event,
// used as the body of streaming responses
func (r *RequestResponse) EventLog() string {
	var sb strings.Builder
	for _, ev := range r.Events {
		line := fmt.Sprintf(
			"[%s] %s", ev.Timestamp.Format(time.RFC3339), ev.Type,
		)
		if ev.Data != "" {
			line += ": " + ev.Data
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
