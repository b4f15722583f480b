package document

import (
	"archive/zip"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

const sampleBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>  Jane Doe  </w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Backend Engineer</w:t><w:tab/><w:t>Cairo</w:t></w:r></w:p>
    <w:p><w:r><w:t>Go &amp; Postgres</w:t><w:br/><w:t>jane@example.com</w:t></w:r></w:p>
  </w:body>
</w:document>`

const sampleHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:p><w:r><w:t>Curriculum Vitae</w:t></w:r></w:p>
</w:hdr>`

func writeDOCX(t *testing.T, dir string, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "cv.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"cv.docx":      FormatDOCX,
		"CV.DOCX":      FormatDOCX,
		"resume.pdf":   FormatPDF,
		"notes.txt":    FormatText,
		"README.md":    FormatText,
		"photo.png":    FormatUnknown,
		"no-extension": FormatUnknown,
	}

	for path, expected := range tests {
		if got := DetectFormat(path); got != expected {
			t.Errorf("DetectFormat(%q) = %q, want %q", path, got, expected)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := "  first line  \r\n\r\n\tsecond\t\n   \nthird\rfourth\n"
	want := "first line\nsecond\nthird\nfourth"

	if got := Normalize(in); got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(" \n\t\n"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestExtractDOCX(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), map[string]string{
		"word/document.xml": sampleBody,
		"word/header1.xml":  sampleHeader,
	})

	text, err := Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Curriculum Vitae\nJane Doe\nBackend Engineer\tCairo\nGo & Postgres\njane@example.com"
	if text != want {
		t.Fatalf("unexpected text:\n got: %q\nwant: %q", text, want)
	}
}

func TestExtractDOCXMissingBody(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), map[string]string{
		"word/styles.xml": "<w:styles/>",
	})

	if _, err := Extract(path); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), map[string]string{
		"word/document.xml": sampleBody,
	})

	first := Load(path, log.New(io.Discard, "", 0))
	second := Load(path, log.New(io.Discard, "", 0))

	if !first.Loaded() {
		t.Fatal("expected document to load")
	}
	if first.Text != second.Text {
		t.Fatalf("expected identical text across loads, got %q and %q", first.Text, second.Text)
	}
}

func TestExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.md")
	if err := os.WriteFile(path, []byte("# Jane Doe\n\n  Go developer  \n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	text, err := Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Jane Doe\nGo developer" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestLoadFailureReturnsEmptyDocument(t *testing.T) {
	tests := []string{
		filepath.Join(t.TempDir(), "missing.docx"),
		filepath.Join(t.TempDir(), "broken.pdf"),
		"cv.odt",
	}

	for _, path := range tests {
		doc := Load(path, log.New(io.Discard, "", 0))
		if doc.Loaded() {
			t.Errorf("expected empty document for %s, got %q", path, doc.Text)
		}
		if doc.Path != path {
			t.Errorf("expected path %q to be kept, got %q", path, doc.Path)
		}
	}
}
