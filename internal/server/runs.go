package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleyhq/volley/pkg/api"
)

func (s *Server) listRuns(c *gin.Context) {
	runs := s.engine.ListRuns()

	c.JSON(http.StatusOK, api.RunsListResponse{
		Runs:  runs,
		Count: len(runs),
	})
}

func (s *Server) getRun(c *gin.Context) {
	id := api.ID(c.Param("runID"))

	res, err := s.engine.GetRun(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// cancelRun requests cancellation. The run settles asynchronously; its
// terminal record shows up in the registry once the step in flight unwinds
func (s *Server) cancelRun(c *gin.Context) {
	id := api.ID(c.Param("runID"))

	if err := s.engine.CancelRun(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Run cancellation requested",
	})
}
