package lens

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// TranscriptVersion is the current version of the transcript format.
const TranscriptVersion = "1.0"

// Transcript is the portable form of an operator session: the filter lens it
// ran under, the conversation log, and every explanation settled during the
// session.
type Transcript struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	SourceID     string              `json:"source_id,omitempty"`
	Filters      FilterState         `json:"filters"`
	Messages     []ChatMessage       `json:"messages"`
	Explanations []ExplanationRecord `json:"explanations,omitempty"`
}

// ExportTranscript writes the current session as JSON to the writer.
// The export is a point-in-time copy; a pending exchange is not represented
// (only settled messages appear in the log).
func (c *Client) ExportTranscript(w io.Writer) error {
	t := Transcript{
		Version:      TranscriptVersion,
		ExportedAt:   time.Now().UTC(),
		SourceID:     c.config.SourceID,
		Filters:      c.filters.State(),
		Messages:     c.session.Messages(),
		Explanations: c.cache.Records(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("export transcript: %w", err)
	}
	return nil
}
