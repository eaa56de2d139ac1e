package booking

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"go.uber.org/zap"
)

// MergeResult is the record after folding in one utterance.
type MergeResult struct {
	Record    Record
	Changed   []catalog.FieldName
	Anomalies []string
}

// Merger runs extraction on an utterance and folds the result into a record.
type Merger struct {
	catalog   *catalog.Catalog
	extractor Extractor
	timeout   time.Duration
}

func NewMerger(cat *catalog.Catalog, extractor Extractor, timeout time.Duration) *Merger {
	return &Merger{catalog: cat, extractor: extractor, timeout: timeout}
}

// Merge extracts fields from utterance and overwrites matching fields of
// existing. Fields the utterance does not mention are kept as they were.
// Extraction failures yield an unchanged record.
func (m *Merger) Merge(ctx context.Context, existing Record, utterance string, sc SessionContext) MergeResult {
	extracted := m.extract(ctx, utterance, sc)
	return m.Fold(ctx, existing, extracted)
}

// Fold applies an already extracted result to existing. Empty values never
// overwrite and unknown field names are reported as anomalies.
func (m *Merger) Fold(ctx context.Context, existing Record, extracted ExtractionResult) MergeResult {
	res := MergeResult{Record: existing.Clone()}
	if len(extracted) == 0 {
		return res
	}

	type candidate struct {
		name  catalog.FieldName
		raw   string
		value string
	}

	keys := make([]string, 0, len(extracted))
	for k := range extracted {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	candidates, err := linq.Pipe3(
		linq.FromSlice(ctx, keys),

		linq.Select(func(k string) candidate {
			return candidate{name: NormalizeFieldName(k), raw: k, value: strings.TrimSpace(extracted[k])}
		}),

		linq.Where(func(c candidate) bool {
			return c.value != ""
		}),

		linq.ToSlice[candidate](),
	)
	if err != nil {
		logger.Error("Failed to fold extraction result", zap.Error(err))
		return res
	}

	for _, c := range candidates {
		if !m.catalog.Contains(c.name) {
			res.Anomalies = append(res.Anomalies, "unknown field "+c.raw)
			logger.Info("Dropping extracted field outside catalog", zap.String("field", c.raw))
			continue
		}
		res.Record[c.name] = c.value
	}

	// Changed is reported in catalog order.
	for _, f := range m.catalog.Fields() {
		if res.Record[f] != existing[f] {
			res.Changed = append(res.Changed, f)
		}
	}
	return res
}

func (m *Merger) extract(ctx context.Context, utterance string, sc SessionContext) ExtractionResult {
	if m.extractor == nil || strings.TrimSpace(utterance) == "" {
		return nil
	}
	callCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	out, err := m.extractor.Extract(callCtx, utterance, m.catalog, sc)
	if err != nil {
		logger.Error("Field extraction failed, keeping record as is",
			zap.String("session", sc.SessionID), zap.Error(err))
		return nil
	}
	return out
}

// NormalizeFieldName maps loose spellings such as "Preferred Date" or
// "preferred-date" onto catalog field names.
func NormalizeFieldName(raw string) catalog.FieldName {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return catalog.FieldName(s)
}
