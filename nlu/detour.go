package nlu

import (
	"context"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/booking-agent/prompts"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/go-collection-boot/async"
)

type LLMDetour struct {
	classifier
	templates *render.Templates
	catalog   *catalog.Catalog
}

func NewLLMDetour(client llm.LLMClient, window *memory.Window, model string, cat *catalog.Catalog) *LLMDetour {
	return &LLMDetour{
		classifier: classifier{client: client, window: window, model: model},
		templates:  render.NewTemplates(cat),
		catalog:    cat,
	}
}

func (d *LLMDetour) ClassifyDetour(ctx context.Context, utterance string, sc booking.SessionContext) (booking.Detour, error) {
	system, err := prompts.RenderDetourPrompt(d.pendingQuestion(sc))
	if err != nil {
		return booking.OnTopic, err
	}

	text, err := async.Await(d.complete(ctx, system, sc, utterance, true))
	if err != nil {
		return booking.OnTopic, err
	}
	obj, err := parseJSONObject(text)
	if err != nil {
		return booking.OnTopic, err
	}
	label := stringValue(obj["detour"])
	if v, ok := booking.ParseDetour(label); ok {
		return v, nil
	}
	return booking.Detour(label), nil
}

func (d *LLMDetour) pendingQuestion(sc booking.SessionContext) string {
	switch sc.FlowState {
	case booking.Collecting:
		if f, ok := booking.NextMissingField(sc.Record, d.catalog.Required()); ok {
			return d.templates.Text(booking.Reply{Intent: booking.IntentAskField, Field: f})
		}
	case booking.AwaitingConfirmation:
		return "Shall I book the appointment as summarized?"
	}
	return ""
}

// KeywordDetour treats a message as off topic when it carries no appointment
// details and matches a non-booking mode.
type KeywordDetour struct {
	router    *KeywordRouter
	extractor *RuleExtractor
}

func NewKeywordDetour() *KeywordDetour {
	return &KeywordDetour{router: NewKeywordRouter(), extractor: NewRuleExtractor()}
}

func (d *KeywordDetour) ClassifyDetour(_ context.Context, utterance string, sc booking.SessionContext) (booking.Detour, error) {
	if booking.IsExplicitCancel(utterance) {
		return booking.ExplicitCancel, nil
	}
	if len(d.extractor.Find(utterance)) > 0 || len(booking.NewSlotContent(utterance, sc.Record)) > 0 {
		return booking.OnTopic, nil
	}
	switch d.router.Match(utterance) {
	case booking.ModeShopInfo, booking.ModeProductInquiry, booking.ModeMaintenanceTips, booking.ModePolicyQuestion, booking.ModeWhatCanYouDo:
		return booking.OffTopic, nil
	}
	return booking.OnTopic, nil
}
