package api

import (
	"github.com/ssargent/mimir/pkg/codec"
	"github.com/ssargent/mimir/pkg/table"
)

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// APIResponse is the envelope for all JSON responses
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FindRequest asks for one row per key; misses are filled from the default
// rows, broadcast cyclically.
type FindRequest[K table.Key, V codec.Element] struct {
	Keys     []K `json:"keys"`
	Defaults []V `json:"defaults"`
}

// FindResponse carries the row-major result rows.
type FindResponse[V codec.Element] struct {
	Values []V `json:"values"`
}

// InsertRequest stores one row-major row per key.
type InsertRequest[K table.Key, V codec.Element] struct {
	Keys   []K `json:"keys"`
	Values []V `json:"values"`
}

// RemoveRequest deletes the rows for the given keys.
type RemoveRequest[K table.Key] struct {
	Keys []K `json:"keys"`
}

// DumpRequest names the artifact for an export or import; empty means the
// table's configured default path.
type DumpRequest struct {
	Path string `json:"path,omitempty"`
}

// StatsResponse reports table shape and storage footprint.
type StatsResponse struct {
	Namespace       string `json:"namespace"`
	RowWidth        int    `json:"row_width"`
	Size            int    `json:"size"`
	ApproximateSize uint64 `json:"approximate_size_bytes"`
}
