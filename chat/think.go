package chat

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// SplitThinking separates the model's reasoning block from its answer.
//
// It scans for the first <think> and then the first </think> after it.
// When both exist, the trimmed text between them is the thinking and the
// trimmed remainder after the closing tag is the answer; text before the
// opening tag is dropped and later tag pairs are left in the answer as-is.
// Without a complete pair the raw text is returned unchanged as the answer.
func SplitThinking(raw string) (thinking, answer string, found bool) {
	start := strings.Index(raw, thinkOpen)
	if start < 0 {
		return "", raw, false
	}

	body := raw[start+len(thinkOpen):]
	end := strings.Index(body, thinkClose)
	if end < 0 {
		return "", raw, false
	}

	return strings.TrimSpace(body[:end]), strings.TrimSpace(body[end+len(thinkClose):]), true
}
