package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of PDF documents page by page.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Supports(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", pageNum, err)
		}
		if builder.Len() > 0 && text != "" {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	return strings.TrimSpace(builder.String()), nil
}
