package api

import (
	"log/slog"

	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/schema"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SerializeRequest carries records to encode as a text table
type SerializeRequest struct {
	Records []schema.Record `json:"records"`
}

// SerializeResponse holds an encoded text table
type SerializeResponse struct {
	Text string `json:"text"`
}

// RecordsResponse holds decoded records
type RecordsResponse struct {
	Count   int              `json:"count"`
	Records []map[string]any `json:"records"`
}

// AppendResponse lists the ids of archived records in line order
type AppendResponse struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// RecordResponse is one archived record
type RecordResponse struct {
	ID     string         `json:"id"`
	Line   string         `json:"line"`
	Record map[string]any `json:"record"`
}

// SchemaInfo describes a registered schema
type SchemaInfo struct {
	Name     string             `json:"name"`
	Fields   []schema.FieldSpec `json:"fields"`
	Archived int                `json:"archived"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind    string
	Port    int
	APIKey  string
	Metrics *Metrics
	Logger  *slog.Logger
}

// ServiceConfig holds configuration for the record service
type ServiceConfig struct {
	Schemas []schema.Definition
	Codec   []codec.Option
	Metrics *Metrics
	Logger  *slog.Logger
}
