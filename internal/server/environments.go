package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/api"
)

func (s *Server) listEnvironments(c *gin.Context) {
	envs, err := s.stores.Environments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.EnvironmentsListResponse{
		Environments: envs,
		Count:        len(envs),
	})
}

func (s *Server) createEnvironment(c *gin.Context) {
	var env api.Environment
	if err := c.ShouldBindJSON(&env); err != nil {
		invalidJSON(c, err)
		return
	}
	if env.ID.IsEmpty() {
		env.ID = api.NewID()
	}
	if err := env.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.stores.Environments.Add(c.Request.Context(), &env); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, &env)
}

func (s *Server) getEnvironment(c *gin.Context) {
	id := api.ID(c.Param("envID"))

	env, err := s.stores.Environments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (s *Server) updateEnvironment(c *gin.Context) {
	id := api.ID(c.Param("envID"))

	var env api.Environment
	if err := c.ShouldBindJSON(&env); err != nil {
		invalidJSON(c, err)
		return
	}
	if env.ID.IsEmpty() {
		env.ID = id
	}
	if env.ID != id {
		badRequest(c, ErrIDMismatch)
		return
	}
	if err := env.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	err := s.stores.Environments.Update(c.Request.Context(), &env)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &env)
}

func (s *Server) deleteEnvironment(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("envID"))

	if err := s.stores.Environments.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	_ = s.stores.Secrets.DeleteSecrets(ctx, store.KindEnvironment, id)

	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Environment deleted",
	})
}

func (s *Server) getEnvironmentSecrets(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("envID"))

	if _, err := s.stores.Environments.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	secrets, err := s.stores.Secrets.Secrets(ctx, store.KindEnvironment, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SecretsBody{Secrets: secrets})
}

func (s *Server) putEnvironmentSecrets(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("envID"))

	var body api.SecretsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}
	if _, err := s.stores.Environments.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	err := s.stores.Secrets.SaveSecrets(
		ctx, store.KindEnvironment, id, body.Secrets,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Secrets saved",
	})
}

func (s *Server) getActiveEnvironment(c *gin.Context) {
	id, err := s.stores.Settings.ActiveEnvironment(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ActiveEnvironmentBody{EnvironmentID: id})
}

func (s *Server) setActiveEnvironment(c *gin.Context) {
	ctx := c.Request.Context()

	var body api.ActiveEnvironmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}
	if !body.EnvironmentID.IsEmpty() {
		if _, err := s.stores.Environments.Get(ctx, body.EnvironmentID); err != nil {
			respondError(c, err)
			return
		}
	}

	err := s.stores.Settings.SetActiveEnvironment(ctx, body.EnvironmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Active environment updated",
	})
}
