// Package prompt holds the system instructions sent ahead of every
// question, keyed by language tag.
package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FallbackLanguage is used when no template exists for a tag.
const FallbackLanguage = "en"

// DocumentPrefix introduces the CV text in its own system message.
const DocumentPrefix = "CV Content: "

//go:embed templates.json
var defaultTemplatesJSON []byte

// Templates maps a language tag to its system instruction.
type Templates map[string]string

// Default returns the built-in Arabic and English templates.
func Default() Templates {
	t, err := parse(defaultTemplatesJSON)
	if err != nil {
		panic(fmt.Errorf("parse embedded prompt templates: %w", err))
	}
	return t
}

// LoadFile merges the templates in the JSON file at path over the defaults.
func LoadFile(path string) (Templates, error) {
	templates := Default()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	overrides, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	for lang, text := range overrides {
		templates[lang] = text
	}
	return templates, nil
}

// For returns the instruction for lang, falling back to English.
func (t Templates) For(lang string) string {
	if text, ok := t[strings.ToLower(lang)]; ok {
		return text
	}
	return t[FallbackLanguage]
}

// DocumentMessage renders the system message that carries the CV text.
func DocumentMessage(content string) string {
	return DocumentPrefix + content
}

func parse(data []byte) (Templates, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	templates := make(Templates, len(raw))
	for lang, text := range raw {
		lang = strings.ToLower(strings.TrimSpace(lang))
		text = strings.TrimSpace(text)
		if lang == "" || text == "" {
			return nil, fmt.Errorf("template entries need a language tag and text")
		}
		templates[lang] = text
	}
	return templates, nil
}
