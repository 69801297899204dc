package extractor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tdis/disaster-chatbot/internal/core/ports"
)

// Registry dispatches extraction to the first registered extractor that
// recognizes the file. Registration order decides precedence.
type Registry struct {
	extractors []ports.TextExtractor
}

func NewRegistry(extractors ...ports.TextExtractor) *Registry {
	return &Registry{extractors: extractors}
}

func (r *Registry) Supports(path string) bool {
	for _, e := range r.extractors {
		if e.Supports(path) {
			return true
		}
	}
	return false
}

func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	for _, e := range r.extractors {
		if e.Supports(path) {
			return e.Extract(ctx, path)
		}
	}
	return "", fmt.Errorf("no extractor for %s", filepath.Base(path))
}
