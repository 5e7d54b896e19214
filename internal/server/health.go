package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	volley "github.com/volleyhq/volley"
	"github.com/volleyhq/volley/pkg/api"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: volley.Name,
		Status:  "ok",
		Version: volley.Version,
	})
}
