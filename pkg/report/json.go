package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the machine-readable pass report.
type Document struct {
	Chunks []ChunkSummary `json:"chunks"`
	Totals Totals         `json:"totals"`
}

// NewDocument wraps summaries with their totals.
func NewDocument(summaries []ChunkSummary) Document {
	if summaries == nil {
		summaries = []ChunkSummary{}
	}

	return Document{Chunks: summaries, Totals: Total(summaries)}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, summaries []ChunkSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(NewDocument(summaries))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}
