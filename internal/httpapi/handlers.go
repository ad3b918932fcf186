package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/mlscore/core"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/outwriter"
	"github.com/huangsam/mlscore/schema"
)

// scoreRequest is the body of POST /artifacts.
type scoreRequest struct {
	URL string `json:"url" binding:"required"`
}

// regexRequest is the body of POST /artifacts/byregex.
type regexRequest struct {
	Regex string `json:"regex" binding:"required"`
}

// artifactMetadata is one search hit.
type artifactMetadata struct {
	Name string              `json:"name"`
	ID   string              `json:"id"`
	Type schema.ArtifactKind `json:"type"`
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(contract.DateTimeFormat),
	}
	if store := s.store(); store != nil {
		if st, err := store.GetStatus(); err == nil {
			status["store"] = st.Backend
			status["artifacts"] = st.TotalArtifacts
		}
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": contract.CodeInvalidInput})
		return
	}

	ctx := contract.WithLogger(c.Request.Context(), s.logger)
	result := s.scorer.ScoreURLs(ctx, []string{req.URL}, 1, s.cfg.ConfigParams())
	if err := result.Err(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, outwriter.NewArtifactView(result.Records[0]))
}

func (s *Server) handleList(c *gin.Context) {
	limit := s.cfg.Limit
	if limit <= 0 {
		limit = contract.DefaultLimit
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, contract.NewError(contract.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := core.ListArtifacts(s.mgr, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]outwriter.ArtifactView, len(records))
	for i, r := range records {
		views[i] = outwriter.NewArtifactView(r)
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleGet(c *gin.Context) {
	record, err := core.GetArtifact(s.mgr, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, outwriter.NewArtifactView(record))
}

func (s *Server) handleRate(c *gin.Context) {
	record, err := core.GetArtifact(s.mgr, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, outwriter.NewRatingView(record))
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := core.DeleteArtifact(s.mgr, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleByRegex(c *gin.Context) {
	var req regexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid regex field", "code": contract.CodeInvalidInput})
		return
	}

	records, err := core.SearchArtifacts(s.mgr, req.Regex)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(records) == 0 {
		writeError(c, contract.NewError(contract.CodeNotFound, "no artifact found under this regex"))
		return
	}
	hits := make([]artifactMetadata, len(records))
	for i, r := range records {
		hits[i] = artifactMetadata{Name: r.Name, ID: r.ID, Type: r.Kind}
	}
	c.JSON(http.StatusOK, hits)
}

func (s *Server) store() contract.ArtifactStore {
	if s.mgr == nil {
		return nil
	}
	return s.mgr.GetArtifactStore()
}

// statusFor maps an error code onto an HTTP status.
func statusFor(err error) int {
	switch contract.CodeOf(err) {
	case contract.CodeInvalidInput:
		return http.StatusBadRequest
	case contract.CodeNotFound:
		return http.StatusNotFound
	case contract.CodeStorage:
		return http.StatusServiceUnavailable
	case contract.CodeHarvest:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "code": contract.CodeOf(err)})
}
