package nlu

import (
	"context"
	"regexp"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/booking-agent/prompts"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/go-collection-boot/async"
)

type LLMConfirmation struct {
	classifier
	catalog *catalog.Catalog
}

func NewLLMConfirmation(client llm.LLMClient, window *memory.Window, model string, cat *catalog.Catalog) *LLMConfirmation {
	return &LLMConfirmation{classifier: classifier{client: client, window: window, model: model}, catalog: cat}
}

// ClassifyConfirmation returns the label the model picked. Labels outside
// the verdict set are passed through for the caller to reject.
func (c *LLMConfirmation) ClassifyConfirmation(ctx context.Context, utterance string, record booking.Record) (booking.Verdict, error) {
	system, err := prompts.RenderConfirmationPrompt(render.Summary(c.catalog, record))
	if err != nil {
		return booking.Unclear, err
	}

	// The summary is in the system prompt; history would only add noise.
	text, err := async.Await(c.complete(ctx, system, booking.SessionContext{}, utterance, true))
	if err != nil {
		return booking.Unclear, err
	}
	obj, err := parseJSONObject(text)
	if err != nil {
		return booking.Unclear, err
	}
	label := stringValue(obj["verdict"])
	if v, ok := booking.ParseVerdict(label); ok {
		return v, nil
	}
	return booking.Verdict(label), nil
}

var (
	affirmRE = regexp.MustCompile(`(?i)\b(y|yes|yeah|yep|yup|sure|ok|okay|correct|confirm(ed)?|sounds (good|great)|perfect|great|please do|go ahead|that'?s right|book it|do it|absolutely|definitely)\b`)
	negateRE = regexp.MustCompile(`(?i)\b(no|nope|nah|not really|don'?t book|do not book|wrong)\b`)
	changeRE = regexp.MustCompile(`(?i)\b(change|instead|rather|switch|make it|move it|different)\b`)
)

// KeywordConfirmation reads yes/no replies from keywords. Mixed signals are
// Unclear.
type KeywordConfirmation struct{}

func NewKeywordConfirmation() *KeywordConfirmation {
	return &KeywordConfirmation{}
}

func (c *KeywordConfirmation) ClassifyConfirmation(_ context.Context, utterance string, _ booking.Record) (booking.Verdict, error) {
	affirm := affirmRE.MatchString(utterance)
	negate := negateRE.MatchString(utterance)

	switch {
	case changeRE.MatchString(utterance):
		return booking.Change, nil
	case affirm && negate:
		return booking.Unclear, nil
	case affirm:
		return booking.Affirmative, nil
	case negate:
		return booking.Negative, nil
	default:
		return booking.Unclear, nil
	}
}
