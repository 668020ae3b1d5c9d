package server

import "github.com/jward/grove"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error codes.
const (
	CodeMalformedInput = "MALFORMED_INPUT"
	CodeReloadFailed   = "RELOAD_FAILED"
)

// SimilarRequest is the body of POST /similar. The front-ends post it
// form-encoded, jQuery style (similar_groups[]=...), or as JSON.
type SimilarRequest struct {
	Token         *int       `json:"token" form:"token" binding:"required"`
	SimilarGroups []grove.ID `json:"similar_groups" form:"similar_groups[]"`
	NetworkGraph  bool       `json:"network_graph" form:"network_graph"`
}

// ParentsRequest is the body of POST /parents.
type ParentsRequest struct {
	ParentNodes []string `json:"parent_nodes" form:"parent_nodes[]"`
	GUID        grove.ID `json:"thisNodeGuid" form:"thisNodeGuid" binding:"required"`
}

// RelatedRequest is the body of POST /related.
type RelatedRequest struct {
	GUIDs []grove.ID `json:"guids" form:"guids[]"`
}

// ReloadResponse is the body of POST /reload.
type ReloadResponse struct {
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
	Code  string       `json:"code,omitempty"`
	Stats *grove.Stats `json:"stats,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ContentHash string `json:"content_hash"`
}

func idsToStrings(ids []grove.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
