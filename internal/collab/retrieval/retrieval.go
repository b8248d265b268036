// Package retrieval implements the knowledge-base port with an in-memory
// lexical index. Documents are scored by token overlap with the query;
// an embedding-backed index can replace this behind the same port.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/aurida/helpline/pkg/ports"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Document is one knowledge-base article.
type Document struct {
	Content  string            `yaml:"content"`
	Metadata map[string]string `yaml:"metadata"`
}

// Index is an in-memory searchable document collection.
type Index struct {
	docs   []Document
	tokens [][]string
}

var _ ports.RetrievalService = (*Index)(nil)

// NewIndex builds an index over docs.
func NewIndex(docs []Document) *Index {
	idx := &Index{
		docs:   docs,
		tokens: make([][]string, len(docs)),
	}
	for i, doc := range docs {
		idx.tokens[i] = tokenize(doc.Content)
	}
	return idx
}

// LoadDefault builds an index over the embedded support articles.
func LoadDefault() (*Index, error) {
	var doc struct {
		Documents []Document `yaml:"documents"`
	}
	if err := yaml.Unmarshal(defaultKnowledge, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	return NewIndex(doc.Documents), nil
}

// Retrieve returns up to topK documents scoring at or above threshold,
// best first.
func (idx *Index) Retrieve(_ context.Context, query string, topK int, threshold float64) ([]ports.RetrievedDocument, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || topK <= 0 {
		return nil, nil
	}

	querySet := make(map[string]struct{}, len(queryTokens))
	for _, tok := range queryTokens {
		querySet[tok] = struct{}{}
	}

	hits := make([]ports.RetrievedDocument, 0, len(idx.docs))
	for i, doc := range idx.docs {
		score := overlap(querySet, idx.tokens[i])
		if score < threshold {
			continue
		}
		hits = append(hits, ports.RetrievedDocument{
			Content:  doc.Content,
			Score:    score,
			Metadata: doc.Metadata,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// overlap scores how much of the query vocabulary the document covers.
func overlap(querySet map[string]struct{}, docTokens []string) float64 {
	if len(querySet) == 0 || len(docTokens) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(docTokens))
	matched := 0
	for _, tok := range docTokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := querySet[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(querySet))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			out = append(out, f)
		}
	}
	return out
}
