// Package explainer answers "what is this topic?" from an ordered chain of
// knowledge sources, falling back to a labeled placeholder.
package explainer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/studyplan/internal/apperr"
)

// SourcePlaceholder marks an explanation no source could provide.
const SourcePlaceholder = "placeholder"

// Explanation is the answer for one topic.
type Explanation struct {
	Topic  string `json:"topic"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// KnowledgeSource returns explanatory text for a topic. ok is false when
// the source has nothing to say.
type KnowledgeSource interface {
	Name() string
	Lookup(ctx context.Context, topic string) (text string, ok bool, err error)
}

// Explainer consults its sources in order.
type Explainer struct {
	sources []KnowledgeSource
	logger  *slog.Logger
}

// New creates an Explainer over sources. A nil logger uses slog.Default().
func New(logger *slog.Logger, sources ...KnowledgeSource) *Explainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Explainer{sources: sources, logger: logger}
}

// Explain returns the first source's answer, or a placeholder. It only
// fails on blank input.
func (e *Explainer) Explain(ctx context.Context, topic string) (Explanation, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Explanation{}, apperr.Invalid("topic", "topic is required")
	}
	for _, src := range e.sources {
		text, ok, err := src.Lookup(ctx, topic)
		if err != nil {
			e.logger.Warn("knowledge source failed",
				slog.String("source", src.Name()),
				slog.String("topic", topic),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			return Explanation{Topic: topic, Text: text, Source: src.Name()}, nil
		}
	}
	return Explanation{Topic: topic, Text: placeholder(topic), Source: SourcePlaceholder}, nil
}

func placeholder(topic string) string {
	return fmt.Sprintf("No explanation is available for %q yet. "+
		"Upload study materials that cover it to get document-backed explanations.", topic)
}
