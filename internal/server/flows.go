package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/internal/archive"
	"github.com/volleyhq/volley/pkg/api"
)

func (s *Server) listFlows(c *gin.Context) {
	flows, err := s.stores.Flows.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FlowsListResponse{
		Flows: flows,
		Count: len(flows),
	})
}

func (s *Server) createFlow(c *gin.Context) {
	var flow api.Flow
	if err := c.ShouldBindJSON(&flow); err != nil {
		invalidJSON(c, err)
		return
	}
	if flow.ID.IsEmpty() {
		flow.ID = api.NewID()
	}
	if err := flow.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.stores.Flows.Add(c.Request.Context(), &flow); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, &flow)
}

func (s *Server) getFlow(c *gin.Context) {
	id := api.ID(c.Param("flowID"))

	flow, err := s.stores.Flows.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flow)
}

func (s *Server) updateFlow(c *gin.Context) {
	id := api.ID(c.Param("flowID"))

	var flow api.Flow
	if err := c.ShouldBindJSON(&flow); err != nil {
		invalidJSON(c, err)
		return
	}
	if flow.ID.IsEmpty() {
		flow.ID = id
	}
	if flow.ID != id {
		badRequest(c, ErrIDMismatch)
		return
	}
	if err := flow.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	err := s.stores.Flows.Update(c.Request.Context(), &flow)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &flow)
}

func (s *Server) deleteFlow(c *gin.Context) {
	id := api.ID(c.Param("flowID"))

	if err := s.stores.Flows.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Flow deleted",
	})
}

// runFlow starts an asynchronous flow run. Progress streams over the
// websocket; the final record lands in the run registry and the archive
func (s *Server) runFlow(c *gin.Context) {
	id := api.ID(c.Param("flowID"))

	res, err := s.engine.StartRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, api.RunStartedResponse{
		Message: "Flow run started",
		RunID:   res.ID,
		FlowID:  id,
	})
}

func (s *Server) listFlowHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.ID(c.Param("flowID"))

	if _, err := s.stores.Flows.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	var entries []*api.HistoryEntry
	if s.history != nil {
		var err error
		entries, err = s.history.List(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, api.HistoryListResponse{
		FlowID:  id,
		Entries: entries,
		Count:   len(entries),
	})
}

func (s *Server) getArchivedRun(c *gin.Context) {
	flowID := api.ID(c.Param("flowID"))
	runID := api.ID(c.Param("runID"))

	if s.history == nil {
		respondError(c, archive.ErrNotFound)
		return
	}
	res, err := s.history.Get(c.Request.Context(), flowID, runID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
