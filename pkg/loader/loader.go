// Package loader produces the source documents fed to graph extraction.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/soundprediction/graphqa/pkg/types"
)

// DemoText is the built-in source text.
const DemoText = `
John's title is Director of the Digital Marketing Group.
John works with Jane, whose title is Chief Marketing Officer.
Jane works in the Executive Group. Jane works with Sharon whose title is the Director of Client Outreach.
Sharon works in the Sales Group.
`

// DemoQuestions are asked after the demo text is loaded.
var DemoQuestions = []string{
	"What is John's title?",
	"Who does John collaborate with?",
	"What group is Jane in?",
	"Who does Jane collaborate with?",
}

// Demo returns the built-in text wrapped in a single document.
func Demo() []types.Document {
	doc := types.NewDocument(DemoText)
	doc.Metadata["source"] = "demo"
	return []types.Document{doc}
}

// FromText wraps text in a single document.
func FromText(text string) ([]types.Document, error) {
	doc := types.NewDocument(text)
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyContent
	}
	return []types.Document{doc}, nil
}

// LoadFile reads a plain text, Markdown or PDF file into one document.
// The whole file becomes one document; no chunking is applied.
func LoadFile(path string) ([]types.Document, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = readPDF(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	docs, err := FromText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	docs[0].Metadata["source"] = path
	return docs, nil
}

// readPDF concatenates the plain text of every page, skipping pages that
// cannot be decoded.
func readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
