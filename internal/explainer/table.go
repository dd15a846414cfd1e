package explainer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var builtin = map[string]string{
	"machine learning": "Machine Learning is a subset of artificial intelligence that enables computers to learn " +
		"and make decisions from data without being explicitly programmed.",
	"neural networks": "Neural Networks are computing systems inspired by the human brain. They consist of " +
		"interconnected nodes that learn to perform tasks by analyzing examples.",
	"database systems": "Database Systems are organized collections of data that allow efficient storage, " +
		"retrieval, and manipulation of information, usually through SQL.",
	"linear algebra": "Linear Algebra is the branch of mathematics concerning linear equations, linear functions, " +
		"and their representations through matrices and vector spaces.",
	"calculus": "Calculus is the mathematical study of continuous change, dealing with derivatives " +
		"(rates of change) and integrals (accumulation of quantities).",
}

// Table answers from a fixed topic → text map, case-insensitively.
type Table struct {
	entries map[string]string
}

// NewTable returns a Table seeded with the built-in topics plus extra.
// Entries in extra override built-ins with the same key.
func NewTable(extra map[string]string) *Table {
	t := &Table{entries: make(map[string]string, len(builtin)+len(extra))}
	for k, v := range builtin {
		t.entries[k] = v
	}
	for k, v := range extra {
		if k = normalize(k); k != "" && strings.TrimSpace(v) != "" {
			t.entries[k] = strings.TrimSpace(v)
		}
	}
	return t
}

// LoadTable reads a YAML knowledge file of topic: text pairs on top of
// the built-ins. An empty path yields the built-ins only.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return NewTable(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("explainer: read knowledge file: %w", err)
	}
	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("explainer: parse knowledge file: %w", err)
	}
	return NewTable(extra), nil
}

func (t *Table) Name() string { return "table" }

func (t *Table) Lookup(_ context.Context, topic string) (string, bool, error) {
	text, ok := t.entries[normalize(topic)]
	return text, ok, nil
}

// Len reports the number of known topics.
func (t *Table) Len() int { return len(t.entries) }

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
