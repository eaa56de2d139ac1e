package nlu

import (
	"context"
	"regexp"
	"strings"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/booking-agent/prompts"
	"github.com/SaiNageswarS/go-collection-boot/async"
)

type LLMRouter struct {
	classifier
}

func NewLLMRouter(client llm.LLMClient, window *memory.Window, model string) *LLMRouter {
	return &LLMRouter{classifier{client: client, window: window, model: model}}
}

func (r *LLMRouter) ClassifyMode(ctx context.Context, utterance string, sc booking.SessionContext) (booking.Mode, error) {
	modes := make([]string, len(booking.Modes))
	for i, m := range booking.Modes {
		modes[i] = string(m)
	}
	system, err := prompts.RenderModeRouterPrompt(modes)
	if err != nil {
		return booking.ModeUnknown, err
	}

	text, err := async.Await(r.complete(ctx, system, sc, utterance, false))
	if err != nil {
		return booking.ModeUnknown, err
	}
	return ParseModeLabel(text), nil
}

// ParseModeLabel reads the first word of a model answer as a mode.
func ParseModeLabel(text string) booking.Mode {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return booking.ModeUnknown
	}
	word := strings.Trim(fields[0], "`'\".,:;!*")
	return booking.ParseMode(word)
}

type keywordRule struct {
	mode    booking.Mode
	pattern *regexp.Regexp
}

// KeywordRouter picks a mode from keywords. Rules are tried in order.
type KeywordRouter struct {
	rules []keywordRule
}

func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{rules: []keywordRule{
		{booking.ModeWhatCanYouDo, regexp.MustCompile(`(?i)\b(what can you (do|help)|what do you do|how can you help|what are you able)\b`)},
		{booking.ModeMaintenanceTips, regexp.MustCompile(`(?i)\b(maintain|maintenance|tips?|how (do|can|should) i (clean|lube|oil|fix|adjust|maintain|pump|inflate))\b`)},
		{booking.ModePolicyQuestion, regexp.MustCompile(`(?i)\b(return|returns|refunds?|warrant(y|ies)|deliver(y|ies)?|polic(y|ies))\b`)},
		{booking.ModeBookAppointment, regexp.MustCompile(`(?i)\b(book|booking|appointment|schedule|tune[\s-]?ups?|repairs?|service (my|the) bike|fix my|bring (my bike )?in|overhaul|puncture|flat (tyre|tire))\b`)},
		{booking.ModeShopInfo, regexp.MustCompile(`(?i)\b(hours|open|opening|close|closing|located|location|address|where (are you|is the shop|is your shop)|contact|phone number|directions)\b`)},
		{booking.ModeProductInquiry, regexp.MustCompile(`(?i)\b(stock|sell|buy|price|prices|do you have|helmets?|accessor(y|ies)|e-?bikes?|mountain bikes?|road bikes?)\b`)},
	}}
}

func (r *KeywordRouter) ClassifyMode(_ context.Context, utterance string, _ booking.SessionContext) (booking.Mode, error) {
	return r.Match(utterance), nil
}

func (r *KeywordRouter) Match(utterance string) booking.Mode {
	for _, rule := range r.rules {
		if rule.pattern.MatchString(utterance) {
			return rule.mode
		}
	}
	return booking.ModeUnknown
}
