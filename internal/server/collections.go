package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/api"
)

func (s *Server) listCollections(c *gin.Context) {
	cols, err := s.stores.Collections.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CollectionsListResponse{
		Collections: cols,
		Count:       len(cols),
	})
}

func (s *Server) createCollection(c *gin.Context) {
	var col api.Collection
	if err := c.ShouldBindJSON(&col); err != nil {
		invalidJSON(c, err)
		return
	}
	if col.ID.IsEmpty() {
		col.ID = api.NewID()
	}
	if err := col.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.stores.Collections.Add(c.Request.Context(), &col); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, &col)
}

func (s *Server) getCollection(c *gin.Context) {
	id := api.ID(c.Param("colID"))

	col, err := s.stores.Collections.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (s *Server) updateCollection(c *gin.Context) {
	id := api.ID(c.Param("colID"))

	var col api.Collection
	if err := c.ShouldBindJSON(&col); err != nil {
		invalidJSON(c, err)
		return
	}
	if col.ID.IsEmpty() {
		col.ID = id
	}
	if col.ID != id {
		badRequest(c, ErrIDMismatch)
		return
	}
	if err := col.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.stores.Collections.Update(c.Request.Context(), &col); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &col)
}

func (s *Server) deleteCollection(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("colID"))

	if err := s.stores.Collections.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	_ = s.stores.Secrets.DeleteSecrets(ctx, store.KindCollection, id)

	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Collection deleted",
	})
}

func (s *Server) getCollectionSecrets(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("colID"))

	if _, err := s.stores.Collections.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	secrets, err := s.stores.Secrets.Secrets(ctx, store.KindCollection, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SecretsBody{Secrets: secrets})
}

func (s *Server) putCollectionSecrets(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("colID"))

	var body api.SecretsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}
	if _, err := s.stores.Collections.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	err := s.stores.Secrets.SaveSecrets(
		ctx, store.KindCollection, id, body.Secrets,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Secrets saved",
	})
}
