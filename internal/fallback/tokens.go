package fallback

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter measures and clips text in cl100k_base tokens so the local
// context attached to a reasoning request stays within a predictable budget.
// When the encoding cannot be initialized (offline cache missing), it
// degrades to rune counting so a reasoning call never fails on accounting.
type tokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var (
	counterOnce sync.Once
	counter     *tokenCounter
)

func sharedCounter() *tokenCounter {
	counterOnce.Do(func() {
		encoding, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Debug("cl100k_base unavailable, falling back to rune counting", "error", err)
			encoding = nil
		}
		counter = &tokenCounter{encoding: encoding}
	})
	return counter
}

// Count returns the token count of text (runes when no encoding is loaded).
func (tc *tokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if tc.encoding == nil {
		return len([]rune(text))
	}
	return len(tc.encoding.Encode(text, nil, nil))
}

// Clip returns a prefix of text within maxTokens.
func (tc *tokenCounter) Clip(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return ""
	}
	if tc.encoding == nil {
		runes := []rune(text)
		if len(runes) <= maxTokens {
			return text
		}
		return string(runes[:maxTokens])
	}

	tokens := tc.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return tc.encoding.Decode(tokens[:maxTokens])
}
