package lens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ImportResult summarizes a transcript import.
type ImportResult struct {
	Messages     int  `json:"messages"`
	Explanations int  `json:"explanations"`
	FiltersSet   bool `json:"filters_set"`
}

// ImportTranscript restores a previously exported session: it seeds the
// conversation log, resolves every exported explanation back into the cache,
// and replaces the filter state with the transcript's lens, re-evaluating the
// resources.
//
// The log is only seeded into an empty session; a populated conversation is
// never rewritten, though explanations and filters are still applied.
func (c *Client) ImportTranscript(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var t Transcript
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("import transcript: %w", err)
	}
	if t.Version != TranscriptVersion {
		return nil, fmt.Errorf("import transcript: unsupported version %q (expected %q)", t.Version, TranscriptVersion)
	}

	result := &ImportResult{}

	if c.session.Seed(t.Messages) {
		result.Messages = len(t.Messages)
	}

	for _, record := range t.Explanations {
		c.cache.Put(record)
		result.Explanations++
	}

	c.SetFilters(ctx, t.Filters)
	result.FiltersSet = true

	return result, nil
}
