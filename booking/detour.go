package booking

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

var (
	// cancelPhrase only matches a reply that is nothing but a cancel request.
	cancelPhrase = regexp.MustCompile(`(?i)^(?:(?:actually|no|ok(?:ay)?|sorry|please)[,.!]?\s+)*` +
		`(?:(?:i(?:\s+want|\s+would\s+like|'d\s+like)\s+to\s+)?cancel(?:\s+(?:it|that|this|everything|(?:the|my)\s+(?:booking|appointment|request)))?` +
		`|never\s*mind|forget\s+(?:it|about\s+it|(?:the|my)\s+(?:booking|appointment))` +
		`|stop\s+(?:the\s+)?booking|abort|scrap\s+(?:it|that|(?:the|my)\s+booking)` +
		`|i\s+(?:don'?t|do\s+not)\s+want\s+(?:to\s+book|an?\s+appointment|the\s+appointment|it)(?:\s+any\s*more)?)` +
		`(?:[,.!]?\s*(?:please|thanks|thank\s+you|forget\s+it|never\s*mind))*[.!\s]*$`)
	keepPhrase = regexp.MustCompile(`(?i)\b(don'?t|do\s+not|no\s+need\s+to|not)\s+(cancel|abort)\b`)
)

// IsExplicitCancel reports whether the utterance is a standalone request to
// abandon the booking. Questions and replies carrying dates or times are
// left to the detour classifier.
func IsExplicitCancel(utterance string) bool {
	utterance = strings.TrimSpace(utterance)
	if strings.Contains(utterance, "?") || keepPhrase.MatchString(utterance) || slotToken.MatchString(utterance) {
		return false
	}
	return cancelPhrase.MatchString(utterance)
}

// Detector classifies utterances made while a booking is active.
type Detector struct {
	classifier DetourClassifier
	timeout    time.Duration
}

func NewDetector(classifier DetourClassifier, timeout time.Duration) *Detector {
	return &Detector{classifier: classifier, timeout: timeout}
}

// Classify returns OnTopic for sessions that are not booking. A standalone
// cancel wins over the classifier, and a failing classifier counts as OnTopic.
func (d *Detector) Classify(ctx context.Context, utterance string, sc SessionContext) Detour {
	if !sc.FlowState.Active() {
		return OnTopic
	}
	if IsExplicitCancel(utterance) {
		return ExplicitCancel
	}
	if d.classifier == nil {
		return OnTopic
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	detour, err := d.classifier.ClassifyDetour(callCtx, utterance, sc)
	if err != nil {
		logger.Error("Detour classification failed, treating as on topic",
			zap.String("session", sc.SessionID), zap.Error(err))
		return OnTopic
	}
	if !detour.Valid() {
		logger.Info("Detour classifier returned unknown label",
			zap.String("session", sc.SessionID), zap.String("label", string(detour)))
		return OnTopic
	}
	return detour
}
