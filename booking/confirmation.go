package booking

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

var slotToken = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun|today|tomorrow|tonight|weekend|next\s+week|morning|afternoon|evening|noon|midday|january|february|march|april|june|july|august|september|october|november|december|\d{1,2}(:\d{2})?\s*(am|pm)|\d{1,2}:\d{2}|\d{1,2}/\d{1,2}(/\d{2,4})?|\d{1,2}(st|nd|rd|th))\b`)

// NewSlotContent returns date or time like tokens in utterance that do not
// already appear in the record.
func NewSlotContent(utterance string, record Record) []string {
	var values strings.Builder
	for _, v := range record {
		values.WriteString(strings.ToLower(v))
		values.WriteByte(' ')
	}
	known := values.String()

	var fresh []string
	for _, tok := range slotToken.FindAllString(utterance, -1) {
		if !strings.Contains(known, strings.ToLower(tok)) {
			fresh = append(fresh, tok)
		}
	}
	return fresh
}

// ConfirmationAdapter turns the classifier output into a verdict that never
// commits a booking on an ambiguous reply.
type ConfirmationAdapter struct {
	classifier ConfirmationClassifier
	timeout    time.Duration
}

func NewConfirmationAdapter(classifier ConfirmationClassifier, timeout time.Duration) *ConfirmationAdapter {
	return &ConfirmationAdapter{classifier: classifier, timeout: timeout}
}

// Classify interprets a reply to the confirmation summary. changed holds the
// fields a merge of the same utterance would modify.
//
// Any changed field makes the verdict Change. A Change without a changed
// field is kept, so the summary is shown again. Slot-like content that
// extraction missed downgrades Affirmative and Negative to Unclear.
func (a *ConfirmationAdapter) Classify(ctx context.Context, sessionID, utterance string, record Record, changed []catalog.FieldName) Verdict {
	verdict := a.classify(ctx, sessionID, utterance, record)

	if len(changed) > 0 {
		return Change
	}
	if verdict == Affirmative || verdict == Negative {
		if fresh := NewSlotContent(utterance, record); len(fresh) > 0 {
			logger.Info("Reply mentions unextracted slot content, asking again",
				zap.String("session", sessionID), zap.Strings("tokens", fresh))
			return Unclear
		}
	}
	return verdict
}

func (a *ConfirmationAdapter) classify(ctx context.Context, sessionID, utterance string, record Record) Verdict {
	if a.classifier == nil {
		return Unclear
	}
	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	verdict, err := a.classifier.ClassifyConfirmation(callCtx, utterance, record.Clone())
	if err != nil {
		logger.Error("Confirmation classification failed",
			zap.String("session", sessionID), zap.Error(err))
		return Unclear
	}
	if !verdict.Valid() {
		logger.Info("Confirmation classifier returned unknown label",
			zap.String("session", sessionID), zap.String("label", string(verdict)))
		return Unclear
	}
	return verdict
}
