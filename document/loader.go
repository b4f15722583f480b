package document

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Document is the normalized CV text. It is built once at startup and
// handed to every component that needs it; nothing mutates it afterwards.
type Document struct {
	Path string
	Text string
}

// Loaded reports whether the document produced any text.
func (d Document) Loaded() bool {
	return d.Text != ""
}

// Load extracts the document at path. Extraction errors are logged and
// yield a Document with empty text; callers decide whether that is fatal.
func Load(path string, logger *log.Logger) Document {
	if logger == nil {
		logger = log.Default()
	}

	text, err := Extract(path)
	if err != nil {
		logger.Printf("extract document %s: %v", path, err)
		return Document{Path: path}
	}
	return Document{Path: path, Text: text}
}

// Extract returns the normalized plain text of the document at path.
func Extract(path string) (string, error) {
	var (
		raw string
		err error
	)

	switch format := DetectFormat(path); format {
	case FormatDOCX:
		raw, err = extractDOCX(path)
	case FormatPDF:
		raw, err = extractPDF(path)
	case FormatText:
		raw, err = extractText(path)
	default:
		return "", fmt.Errorf("unsupported document type: %q", path)
	}
	if err != nil {
		return "", err
	}

	return Normalize(raw), nil
}

// Normalize trims every line, drops empty ones and joins the rest with
// single newlines.
func Normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}
