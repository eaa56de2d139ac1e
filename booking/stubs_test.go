package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SaiNageswarS/booking-agent/catalog"
)

var errCollaborator = errors.New("collaborator unavailable")

type extractorFunc func(utterance string) (ExtractionResult, error)

func (f extractorFunc) Extract(_ context.Context, utterance string, _ *catalog.Catalog, _ SessionContext) (ExtractionResult, error) {
	return f(utterance)
}

// scriptedExtractor answers from a fixed utterance table.
func scriptedExtractor(table map[string]ExtractionResult) Extractor {
	return extractorFunc(func(utterance string) (ExtractionResult, error) {
		return table[utterance], nil
	})
}

type routerFunc func(utterance string) (Mode, error)

func (f routerFunc) ClassifyMode(_ context.Context, utterance string, _ SessionContext) (Mode, error) {
	return f(utterance)
}

func routeAll(mode Mode) ModeRouter {
	return routerFunc(func(string) (Mode, error) { return mode, nil })
}

type confirmFunc func(utterance string) (Verdict, error)

func (f confirmFunc) ClassifyConfirmation(_ context.Context, utterance string, _ Record) (Verdict, error) {
	return f(utterance)
}

func verdictTable(table map[string]Verdict) ConfirmationClassifier {
	return confirmFunc(func(utterance string) (Verdict, error) {
		if v, ok := table[utterance]; ok {
			return v, nil
		}
		return Unclear, nil
	})
}

type detourFunc func(utterance string) (Detour, error)

func (f detourFunc) ClassifyDetour(_ context.Context, utterance string, _ SessionContext) (Detour, error) {
	return f(utterance)
}

func detourTable(table map[string]Detour) DetourClassifier {
	return detourFunc(func(utterance string) (Detour, error) {
		if d, ok := table[utterance]; ok {
			return d, nil
		}
		return OnTopic, nil
	})
}

type recordingSink struct {
	mu      sync.Mutex
	fail    error
	commits map[string]Record
	calls   int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{commits: map[string]Record{}}
}

func (s *recordingSink) Commit(_ context.Context, key string, record Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return "", s.fail
	}
	if _, ok := s.commits[key]; !ok {
		s.commits[key] = record.Clone()
	}
	return fmt.Sprintf("bk-%s", key), nil
}
