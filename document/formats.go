// Package document extracts and normalizes the plain text of the CV the
// service answers questions about.
package document

import (
	"path/filepath"
	"strings"
)

// Format enumerates supported document formats.
type Format string

const (
	// FormatUnknown represents an unsupported or undetected format.
	FormatUnknown Format = ""
	// FormatDOCX represents Office Open XML word processing documents.
	FormatDOCX Format = "docx"
	// FormatPDF represents PDF documents.
	FormatPDF Format = "pdf"
	// FormatText represents plain text and Markdown documents.
	FormatText Format = "text"
)

// DetectFormat infers a document format from the provided path's extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDOCX
	case ".pdf":
		return FormatPDF
	case ".txt", ".md", ".markdown":
		return FormatText
	default:
		return FormatUnknown
	}
}
