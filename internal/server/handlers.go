package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jward/grove"
)

// Dataset is the part of *grove.Engine the handlers use.
type Dataset interface {
	Query() *grove.QueryBuilder
	Reload(ctx context.Context) error
	Stats() grove.Stats
}

// Handlers contains the HTTP handlers for the tree API.
type Handlers struct {
	dataset Dataset
	logger  *slog.Logger
}

// NewHandlers creates handlers serving dataset.
func NewHandlers(dataset Dataset, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{dataset: dataset, logger: logger}
}

// Reload reloads the dataset and records the outcome. It backs POST /reload
// and the dataset watcher.
func (h *Handlers) Reload(ctx context.Context) error {
	if err := h.dataset.Reload(ctx); err != nil {
		reloadsTotal.WithLabelValues("failure").Inc()
		return err
	}
	reloadsTotal.WithLabelValues("success").Inc()
	return nil
}

// HandleSearch handles GET /search/:phrase.
//
// Response:
//
//	200 OK: the tree pruned to the matches, matching projects highlighted
func (h *Handlers) HandleSearch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	phrase := c.Param("phrase")

	q := h.dataset.Query()
	paths := q.Search(grove.ByText(phrase))
	searchPaths.Observe(float64(len(paths)))

	h.logger.Debug("search", "request_id", requestID, "phrase", phrase, "matches", len(paths))
	c.JSON(http.StatusOK, q.Prune(paths, nil))
}

// HandleExpand handles GET /dat/:nodeID.
//
// Response:
//
//	200 OK: the node with one level of children, or null for a leaf or an
//	        unknown token
//	400 Bad Request: non-numeric node id
func (h *Handlers) HandleExpand(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	token, err := strconv.Atoi(c.Param("nodeID"))
	if err != nil {
		h.logger.Warn("invalid node id", "request_id", requestID, "node_id", c.Param("nodeID"))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "node id must be an integer",
			Code:  CodeMalformedInput,
		})
		return
	}

	node, ok := h.dataset.Query().Expand(token)
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, node)
}

// HandleSimilar handles POST /similar.
//
// Response:
//
//	200 OK: the annotated tree, or the flat list of similar groups when
//	        network_graph is set
//	400 Bad Request: missing or unparseable token
func (h *Handlers) HandleSimilar(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var req SimilarRequest
	if err := c.ShouldBind(&req); err != nil {
		h.malformed(c, requestID, "HandleSimilar", err)
		return
	}

	res := h.dataset.Query().SimilarGroups(grove.SimilarRequest{
		Origin:       *req.Token,
		Similars:     idsToStrings(req.SimilarGroups),
		NetworkGraph: req.NetworkGraph,
	})
	if req.NetworkGraph {
		c.JSON(http.StatusOK, res.Groups)
		return
	}
	c.JSON(http.StatusOK, res.Tree)
}

// HandleParents handles POST /parents.
//
// Response:
//
//	200 OK: the parent nodes, possibly []
//	400 Bad Request: missing or unparseable guid
func (h *Handlers) HandleParents(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var req ParentsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.malformed(c, requestID, "HandleParents", err)
		return
	}
	c.JSON(http.StatusOK, h.dataset.Query().Parents(req.ParentNodes, string(req.GUID)))
}

// HandleRelated handles POST /related.
func (h *Handlers) HandleRelated(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var req RelatedRequest
	if err := c.ShouldBind(&req); err != nil {
		h.malformed(c, requestID, "HandleRelated", err)
		return
	}
	c.JSON(http.StatusOK, h.dataset.Query().Related(idsToStrings(req.GUIDs)))
}

// HandleReload handles POST /reload.
//
// Response:
//
//	200 OK: {"ok": true, "stats": {...}}
//	500 Internal Server Error: {"ok": false, "error": "...", "code": "RELOAD_FAILED"}; the previous
//	        dataset is still being served
func (h *Handlers) HandleReload(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleReload")

	if err := h.Reload(c.Request.Context()); err != nil {
		logger.Error("reload failed", "error", err)
		c.JSON(http.StatusInternalServerError, ReloadResponse{
			OK:    false,
			Error: err.Error(),
			Code:  CodeReloadFailed,
		})
		return
	}
	stats := h.dataset.Stats()
	logger.Info("reload complete", "nodes", stats.NodeCount, "hash", stats.ContentHash)
	c.JSON(http.StatusOK, ReloadResponse{OK: true, Stats: &stats})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		ContentHash: h.dataset.Stats().ContentHash,
	})
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.dataset.Stats())
}

func (h *Handlers) malformed(c *gin.Context, requestID, handler string, err error) {
	h.logger.Warn("invalid request body", "request_id", requestID, "handler", handler, "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: grove.ErrMalformedInput.Error() + ": " + err.Error(),
		Code:  CodeMalformedInput,
	})
}

// getOrCreateRequestID returns the caller's X-Request-ID or a fresh UUID,
// and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
