package nlu

import (
	"context"
	"regexp"
	"strings"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/booking-agent/prompts"
	"github.com/SaiNageswarS/go-collection-boot/async"
)

type LLMExtractor struct {
	classifier
}

func NewLLMExtractor(client llm.LLMClient, window *memory.Window, model string) *LLMExtractor {
	return &LLMExtractor{classifier{client: client, window: window, model: model}}
}

func (e *LLMExtractor) Extract(ctx context.Context, utterance string, cat *catalog.Catalog, sc booking.SessionContext) (booking.ExtractionResult, error) {
	fields := make([]prompts.Field, 0, len(cat.Fields()))
	for _, f := range cat.Fields() {
		fields = append(fields, prompts.Field{Name: string(f), Label: cat.Label(f), Required: cat.IsRequired(f)})
	}
	record := make(map[string]string, len(sc.Record))
	for k, v := range sc.Record {
		record[string(k)] = v
	}

	system, err := prompts.RenderExtractionPrompt(fields, record)
	if err != nil {
		return nil, err
	}

	text, err := async.Await(e.complete(ctx, system, sc, utterance, true))
	if err != nil {
		return nil, err
	}
	obj, err := parseJSONObject(text)
	if err != nil {
		return nil, err
	}

	out := booking.ExtractionResult{}
	for k, v := range obj {
		if s := stringValue(v); s != "" {
			out[k] = s
		}
	}
	return out, nil
}

var (
	serviceRules = []struct {
		value   string
		pattern *regexp.Regexp
	}{
		{"tune-up", regexp.MustCompile(`(?i)\btune[\s-]?ups?\b`)},
		{"overhaul", regexp.MustCompile(`(?i)\boverhaul\b`)},
		{"flat repair", regexp.MustCompile(`(?i)\b(flat\s+(tyre|tire)|puncture)\b`)},
		{"brake service", regexp.MustCompile(`(?i)\bbrake\s+(service|adjustment|bleed)\b`)},
		{"wheel truing", regexp.MustCompile(`(?i)\b(wheel\s+truing|true\s+(my|the)\s+wheel)\b`)},
		{"bike fitting", regexp.MustCompile(`(?i)\bbike\s+fit(ting)?\b`)},
		{"repair", regexp.MustCompile(`(?i)\brepairs?\b`)},
	}

	weekdayRE   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	relativeRE  = regexp.MustCompile(`(?i)\b(day after tomorrow|today|tomorrow)\b`)
	monthDayRE  = regexp.MustCompile(`(?i)\b((jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(st|nd|rd|th)?|\d{1,2}(st|nd|rd|th)?\s+(of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*)\b`)
	numericDate = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(/\d{2,4})?\b`)

	specificTimeRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)`)
	clockTimeRE    = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)
	dayPartRE      = regexp.MustCompile(`(?i)\b(morning|afternoon|evening|noon|midday|lunchtime)\b`)

	bikeRE  = regexp.MustCompile(`(?i)\b((road|mountain|gravel|hybrid|city|bmx|cargo|folding|electric|kids)\s+bikes?|e-?bikes?)\b`)
	issueRE = regexp.MustCompile(`(?i)\b(squeak\w*|creak\w*|click\w*|rattl\w*|wobbl\w*|rubbing|skipping|slipping|won'?t shift|broken spoke|bent wheel|flat (tyre|tire)|puncture)\b`)
	emailRE = regexp.MustCompile(`[\w.+-]+@[\w-]+(\.[\w-]+)+`)
	phoneRE = regexp.MustCompile(`\+?\d[\d\s-]{6,}\d`)
)

// RuleExtractor finds appointment fields with regular expressions. It only
// reports text that literally appears in the utterance.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

func (e *RuleExtractor) Extract(_ context.Context, utterance string, cat *catalog.Catalog, _ booking.SessionContext) (booking.ExtractionResult, error) {
	all := e.Find(utterance)
	out := booking.ExtractionResult{}
	for k, v := range all {
		if cat.Contains(catalog.FieldName(k)) {
			out[k] = v
		}
	}
	return out, nil
}

// Find returns every field the rules recognise in utterance.
func (e *RuleExtractor) Find(utterance string) booking.ExtractionResult {
	out := booking.ExtractionResult{}

	for _, rule := range serviceRules {
		if rule.pattern.MatchString(utterance) {
			out[string(catalog.ServiceType)] = rule.value
			break
		}
	}

	if d := findDate(utterance); d != "" {
		out[string(catalog.PreferredDate)] = d
	}
	if t := findTime(utterance); t != "" {
		out[string(catalog.PreferredTime)] = t
	}
	if m := bikeRE.FindString(utterance); m != "" {
		out[string(catalog.BikeDetails)] = strings.ToLower(m)
	}
	if issues := issueRE.FindAllString(utterance, -1); len(issues) > 0 {
		out[string(catalog.SpecificIssues)] = strings.ToLower(strings.Join(issues, ", "))
	}

	var contact []string
	contact = append(contact, emailRE.FindAllString(utterance, -1)...)
	for _, p := range phoneRE.FindAllString(utterance, -1) {
		contact = append(contact, strings.TrimSpace(p))
	}
	if len(contact) > 0 {
		out[string(catalog.ContactInfo)] = strings.Join(contact, ", ")
	}
	return out
}

func findDate(utterance string) string {
	if m := weekdayRE.FindString(utterance); m != "" {
		return titleCase(m)
	}
	if m := relativeRE.FindString(utterance); m != "" {
		return strings.ToLower(m)
	}
	if m := monthDayRE.FindString(utterance); m != "" {
		return m
	}
	return numericDate.FindString(utterance)
}

func findTime(utterance string) string {
	if m := specificTimeRE.FindStringSubmatch(utterance); m != nil {
		suffix := strings.ToLower(strings.ReplaceAll(m[3], ".", ""))
		if m[2] != "" {
			return m[1] + ":" + m[2] + suffix
		}
		return m[1] + suffix
	}
	if m := clockTimeRE.FindString(utterance); m != "" {
		return m
	}
	return strings.ToLower(dayPartRE.FindString(utterance))
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
