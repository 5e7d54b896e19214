package client

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/volleyhq/volley/pkg/api"
)

const userAgent = "Volley-Engine/1.0"

// buildHeaders assembles the outgoing header set: enabled custom headers
// first, then the configured auth mode. Auth always wins over a custom
// Authorization header
func buildHeaders(r *api.Request) map[string]string {
	res := map[string]string{}
	for name, value := range r.Headers {
		if r.DisabledHeaders[name] {
			continue
		}
		if r.HasAuth() && strings.EqualFold(name, "Authorization") {
			continue
		}
		res[name] = value
	}

	if r.HasAuth() {
		switch r.Auth.Mode {
		case api.AuthBasic:
			cred := base64.StdEncoding.EncodeToString(
				[]byte(r.Auth.Username + ":" + r.Auth.Password),
			)
			res["Authorization"] = "Basic " + cred
		case api.AuthBearer:
			res["Authorization"] = "Bearer " + r.Auth.Token
		}
	}

	if !hasHeader(res, "User-Agent") {
		res["User-Agent"] = userAgent
	}
	return res
}

func hasHeader(headers map[string]string, name string) bool {
	for key := range headers {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// responseHeaders flattens an http.Header to the first value per name
func responseHeaders(h http.Header) map[string]string {
	res := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			res[name] = values[0]
		}
	}
	return res
}

// contentTypeFor maps a REST body encoding to its wire content type
func contentTypeFor(t api.BodyType) string {
	switch t {
	case api.BodyJSON:
		return "application/json"
	case api.BodyText:
		return "text/plain"
	case api.BodyXML:
		return "application/xml"
	case api.BodyForm:
		return "application/x-www-form-urlencoded"
	}
	return ""
}

// wsURL maps http(s) URLs onto their ws(s) equivalents; socket URLs pass
// through untouched
func wsURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	}
	return raw
}
