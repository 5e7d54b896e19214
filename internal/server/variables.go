package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/pkg/api"
)

// resolveText previews placeholder substitution without executing anything
func (s *Server) resolveText(c *gin.Context) {
	var body api.ResolveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}

	res, err := s.engine.ResolveText(
		c.Request.Context(), body.Text, body.EnvironmentID, body.CollectionID,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getVariable(c *gin.Context) {
	name := c.Param("name")
	envID := api.ID(c.Query("environment_id"))
	colID := api.ID(c.Query("collection_id"))

	res, err := s.engine.VariableValue(c.Request.Context(), name, envID, colID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) putVariable(c *gin.Context) {
	name := c.Param("name")

	var body api.VariableBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}

	err := s.engine.SetVariableValue(
		c.Request.Context(), name, body.Value,
		body.EnvironmentID, body.CollectionID, body.SaveToCollection,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Variable saved",
	})
}
