package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Trace   TraceMetadata `json:"trace"`
	Samples []Sample      `json:"samples"`
}

// ExportJSON writes a trace and its samples as indented JSON.
func ExportJSON(w io.Writer, meta TraceMetadata, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Trace: meta, Samples: samples})
}
