package explainer

import (
	"context"
	"fmt"

	"github.com/starford/studyplan/internal/models"
)

// Searcher is the slice of the document index the explainer needs.
type Searcher interface {
	SearchDocuments(ctx context.Context, query string, limit int) ([]models.DocumentHit, error)
}

// Documents answers with the best-matching excerpt of an uploaded document.
type Documents struct {
	index Searcher
}

// NewDocuments wraps a document index as a knowledge source.
func NewDocuments(index Searcher) *Documents {
	return &Documents{index: index}
}

func (d *Documents) Name() string { return "documents" }

func (d *Documents) Lookup(ctx context.Context, topic string) (string, bool, error) {
	hits, err := d.index.SearchDocuments(ctx, topic, 1)
	if err != nil {
		return "", false, err
	}
	if len(hits) == 0 || hits[0].Snippet == "" {
		return "", false, nil
	}
	h := hits[0]
	return fmt.Sprintf("From %s (%s): %s", h.Name, h.Subject, h.Snippet), true, nil
}
