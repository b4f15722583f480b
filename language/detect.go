// Package language tags user questions as Arabic or English so the right
// system prompt can be picked.
package language

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

const (
	Arabic  = "ar"
	English = "en"
)

// Detect returns Arabic when text is detected as Arabic, and English for
// every other language, including Persian and Urdu, and for detection
// failures. Arabic-script text too short for a reliable guess counts as
// Arabic.
func Detect(text string) (lang string) {
	if strings.TrimSpace(text) == "" {
		return English
	}

	defer func() {
		if recover() != nil {
			lang = English
		}
	}()

	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Arb {
		return Arabic
	}
	if info.Script == unicode.Arabic && !info.IsReliable() {
		return Arabic
	}
	return English
}
