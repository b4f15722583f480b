package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTemplates(t *testing.T) {
	templates := Default()

	for _, lang := range []string{"ar", "en"} {
		text := templates.For(lang)
		if text == "" {
			t.Fatalf("missing %s template", lang)
		}
		if !strings.Contains(text, "<think></think>") {
			t.Errorf("%s template must ask for the thinking delimiters", lang)
		}
	}

	if !strings.Contains(templates.For("en"), "only from the content of the uploaded CV") {
		t.Error("english template should restrict answers to the CV")
	}
	if !strings.Contains(templates.For("ar"), "السيرة الذاتية") {
		t.Error("arabic template should be written in Arabic")
	}
}

func TestForFallsBackToEnglish(t *testing.T) {
	templates := Default()

	if templates.For("fr") != templates.For("en") {
		t.Fatal("expected unknown language to fall back to english")
	}
	if templates.For("AR") != templates.For("ar") {
		t.Fatal("expected tag lookup to be case insensitive")
	}
}

func TestLoadFileMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	body := `{"fr": "Vous êtes un assistant. <think></think>", "EN": "Custom english prompt"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write prompts: %v", err)
	}

	templates, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := templates.For("fr"); !strings.HasPrefix(got, "Vous êtes") {
		t.Errorf("expected french override, got %q", got)
	}
	if got := templates.For("en"); got != "Custom english prompt" {
		t.Errorf("expected english override, got %q", got)
	}
	if templates.For("ar") != Default().For("ar") {
		t.Error("expected arabic default to be kept")
	}
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"en": }`), 0o600); err != nil {
		t.Fatalf("write prompts: %v", err)
	}
	if _, err := LoadFile(invalid); err == nil {
		t.Error("expected error for malformed json")
	}

	blank := filepath.Join(dir, "blank.json")
	if err := os.WriteFile(blank, []byte(`{"de": "  "}`), 0o600); err != nil {
		t.Fatalf("write prompts: %v", err)
	}
	if _, err := LoadFile(blank); err == nil {
		t.Error("expected error for blank template")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFileEmptyPathUsesDefaults(t *testing.T) {
	templates, err := LoadFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 default templates, got %d", len(templates))
	}
}

func TestDocumentMessage(t *testing.T) {
	if got := DocumentMessage("Jane Doe"); got != "CV Content: Jane Doe" {
		t.Fatalf("unexpected document message %q", got)
	}
}
