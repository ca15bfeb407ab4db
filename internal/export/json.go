// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the complete snapshot, including each turn's
// analysis. Display options do not apply.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonDocument struct {
	*Snapshot
	ExportedAt time.Time `json:"exported_at"`
	Generator  string    `json:"generator"`
}

// Export converts a snapshot to indented JSON.
func (e *JSONExporter) Export(snap *Snapshot) ([]byte, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(jsonDocument{
		Snapshot:   snap,
		ExportedAt: e.options.now(),
		Generator:  "comply-tui",
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
