package nlu

import (
	"context"
	"strings"
)

// SafetyChecker decides whether an utterance may be answered at all.
type SafetyChecker interface {
	IsSafe(ctx context.Context, utterance string) (bool, error)
}

// KeywordSafety rejects utterances containing any blocked term,
// case-insensitively.
type KeywordSafety struct {
	blocked []string
}

func NewKeywordSafety(blocked ...string) *KeywordSafety {
	if len(blocked) == 0 {
		blocked = []string{"unsafe"}
	}
	terms := make([]string, 0, len(blocked))
	for _, b := range blocked {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			terms = append(terms, b)
		}
	}
	return &KeywordSafety{blocked: terms}
}

func (s *KeywordSafety) IsSafe(_ context.Context, utterance string) (bool, error) {
	lower := strings.ToLower(utterance)
	for _, b := range s.blocked {
		if strings.Contains(lower, b) {
			return false, nil
		}
	}
	return true, nil
}
