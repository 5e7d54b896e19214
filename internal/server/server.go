package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/internal/archive"
	"github.com/volleyhq/volley/internal/client"
	"github.com/volleyhq/volley/internal/engine"
	"github.com/volleyhq/volley/internal/engine/event"
	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/internal/util"
	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/vars"
)

// Server implements the HTTP API for the workbench
type Server struct {
	engine  *engine.Engine
	stores  *store.Stores
	hub     *event.Hub
	history *archive.Store
	sockets util.Set[*Client]
	mu      sync.Mutex
}

var (
	ErrInvalidJSON = errors.New("invalid JSON request")
	ErrIDMismatch  = errors.New("id in URL does not match id in body")

	// ErrNoRequestBody rejects ad-hoc executions that carry neither an
	// inline request nor a stored request id
	ErrNoRequestBody = errors.New("request or request_id required")
)

// NewServer creates a new HTTP API server. The history store may be nil
// when run archiving is disabled
func NewServer(
	eng *engine.Engine, stores *store.Stores, hub *event.Hub,
	history *archive.Store,
) *Server {
	return &Server{
		engine:  eng,
		stores:  stores,
		hub:     hub,
		history: history,
		sockets: util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	a := router.Group("/api")
	{
		// Environment endpoints
		a.GET("/environments", s.listEnvironments)
		a.POST("/environments", s.createEnvironment)
		a.GET("/environments/:envID", s.getEnvironment)
		a.PUT("/environments/:envID", s.updateEnvironment)
		a.DELETE("/environments/:envID", s.deleteEnvironment)
		a.GET("/environments/:envID/secrets", s.getEnvironmentSecrets)
		a.PUT("/environments/:envID/secrets", s.putEnvironmentSecrets)
		a.GET("/active-environment", s.getActiveEnvironment)
		a.PUT("/active-environment", s.setActiveEnvironment)

		// Collection endpoints
		a.GET("/collections", s.listCollections)
		a.POST("/collections", s.createCollection)
		a.GET("/collections/:colID", s.getCollection)
		a.PUT("/collections/:colID", s.updateCollection)
		a.DELETE("/collections/:colID", s.deleteCollection)
		a.GET("/collections/:colID/secrets", s.getCollectionSecrets)
		a.PUT("/collections/:colID/secrets", s.putCollectionSecrets)

		// Request endpoints
		a.GET("/requests", s.listRequests)
		a.POST("/requests", s.createRequest)
		a.POST("/requests/execute", s.executeAdHoc)
		a.GET("/requests/:requestID", s.getRequest)
		a.PUT("/requests/:requestID", s.updateRequest)
		a.DELETE("/requests/:requestID", s.deleteRequest)
		a.POST("/requests/:requestID/execute", s.executeRequest)
		a.POST("/requests/:requestID/convert", s.convertRequest)

		// Flow endpoints
		a.GET("/flows", s.listFlows)
		a.POST("/flows", s.createFlow)
		a.GET("/flows/:flowID", s.getFlow)
		a.PUT("/flows/:flowID", s.updateFlow)
		a.DELETE("/flows/:flowID", s.deleteFlow)
		a.POST("/flows/:flowID/run", s.runFlow)
		a.GET("/flows/:flowID/history", s.listFlowHistory)
		a.GET("/flows/:flowID/history/:runID", s.getArchivedRun)

		// Run endpoints
		a.GET("/runs", s.listRuns)
		a.GET("/runs/:runID", s.getRun)
		a.POST("/runs/:runID/cancel", s.cancelRun)

		// Variable previews
		a.POST("/resolve", s.resolveText)
		a.GET("/variables/:name", s.getVariable)
		a.PUT("/variables/:name", s.putVariable)

		// WebSocket
		a.GET("/ws", s.handleWebSocket)
	}

	return router
}

// respondError maps an error to its HTTP status and writes the standard
// error envelope
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, archive.ErrNotFound),
		errors.Is(err, engine.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, engine.ErrRunFinished):
		return http.StatusConflict
	case errors.Is(err, store.ErrEmptyKey),
		errors.Is(err, client.ErrNoExecutor),
		errors.Is(err, vars.ErrNoScope),
		errors.Is(err, vars.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Error:  err.Error(),
		Status: http.StatusBadRequest,
	})
}

func invalidJSON(c *gin.Context, err error) {
	badRequest(c, fmt.Errorf("%w: %v", ErrInvalidJSON, err))
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
