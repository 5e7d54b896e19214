package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/pkg/api"
)

func (s *Server) listRequests(c *gin.Context) {
	reqs, err := s.stores.Requests.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.RequestsListResponse{
		Requests: reqs,
		Count:    len(reqs),
	})
}

func (s *Server) createRequest(c *gin.Context) {
	var req api.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c, err)
		return
	}
	if req.ID.IsEmpty() {
		req.ID = api.NewID()
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.stores.Requests.Add(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, &req)
}

func (s *Server) getRequest(c *gin.Context) {
	id := api.ID(c.Param("requestID"))

	req, err := s.stores.Requests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (s *Server) updateRequest(c *gin.Context) {
	id := api.ID(c.Param("requestID"))

	var req api.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c, err)
		return
	}
	if req.ID.IsEmpty() {
		req.ID = id
	}
	if req.ID != id {
		badRequest(c, ErrIDMismatch)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	err := s.stores.Requests.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &req)
}

func (s *Server) deleteRequest(c *gin.Context) {
	id := api.ID(c.Param("requestID"))

	if err := s.stores.Requests.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Request deleted",
	})
}

// executeRequest runs a stored request template. The body is optional and
// only supplies environment or collection overrides
func (s *Server) executeRequest(c *gin.Context) {
	id := api.ID(c.Param("requestID"))

	var body api.ExecuteRequestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			invalidJSON(c, err)
			return
		}
	}

	resp, err := s.engine.ExecuteStoredRequest(
		c.Request.Context(), id, body.EnvironmentID, body.CollectionID,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// executeAdHoc runs an inline request without persisting it. When the body
// names a stored request instead, that template runs
func (s *Server) executeAdHoc(c *gin.Context) {
	var body api.ExecuteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}

	ctx := c.Request.Context()
	if body.Request == nil {
		if body.RequestID.IsEmpty() {
			badRequest(c, ErrNoRequestBody)
			return
		}
		resp, err := s.engine.ExecuteStoredRequest(
			ctx, body.RequestID, body.EnvironmentID, body.CollectionID,
		)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if body.Request.ID.IsEmpty() {
		body.Request.ID = api.NewID()
	}
	resp, err := s.engine.ExecuteRequest(
		ctx, body.Request, body.EnvironmentID, body.CollectionID,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// convertRequest returns a copy of a stored request re-expressed as another
// kind. The converted copy is not persisted; saving it is the caller's call
func (s *Server) convertRequest(c *gin.Context) {
	id := api.ID(c.Param("requestID"))

	var body api.ConvertRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidJSON(c, err)
		return
	}
	switch body.Kind {
	case api.KindREST, api.KindGraphQL, api.KindWebSocket:
	default:
		badRequest(c, fmt.Errorf("%w: %s", api.ErrInvalidRequestKind, body.Kind))
		return
	}

	req, err := s.stores.Requests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ConvertRequest(req, body.Kind))
}
