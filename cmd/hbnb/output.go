package main

import (
	"encoding/json"
	"io"

	"github.com/matsen/hbnb/internal/store"
)

// outputJSON writes a value as formatted JSON to w.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FieldInfo describes one declared attribute in `hbnb types` output.
type FieldInfo struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Default store.Value `json:"default"`
}

// TypeInfo describes one type tag in `hbnb types` output.
type TypeInfo struct {
	Tag    string      `json:"tag"`
	Fields []FieldInfo `json:"fields"`
}

// ExportResponse is the output of `hbnb export`.
type ExportResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Records int    `json:"records"`
}
