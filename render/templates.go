package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
)

const (
	UnsafeText        = "I am afraid I can't respond to that..."
	PromptForMoreText = "None of the response modes I support apply to your question. Please clarify?"
	RetryText         = "Sorry, something went wrong on our side. Please send that again."

	CapabilitiesText = "I'm here to help you with JO's Bike Shop! I can assist you with:\n\n" +
		"• Shop Information - Opening hours, location, and contact details\n" +
		"• Product Inquiries - Available bikes, accessories, and product availability\n" +
		"• Service Appointments - Booking bike service and repairs\n" +
		"• Maintenance Tips - Advice on keeping your bike in top condition\n" +
		"• Shop Policies - Questions about returns, warranties, and delivery\n\n" +
		"How can I help you today?"
)

var fieldQuestions = map[catalog.FieldName]string{
	catalog.ServiceType:    "What kind of service does your bike need, for example a tune-up or a repair?",
	catalog.PreferredDate:  "What day would you like to bring your bike in?",
	catalog.PreferredTime:  "What time of day works best for you?",
	catalog.BikeDetails:    "What bike are we working on?",
	catalog.SpecificIssues: "Is there anything specific that needs attention?",
	catalog.ContactInfo:    "How can we reach you about the appointment?",
}

var modeFallbacks = map[booking.Mode]string{
	booking.ModeShopInfo:        "For opening hours, directions and contact details please give JO's Bike Shop a call. I can book a service appointment for you right here.",
	booking.ModeProductInquiry:  "Stock changes daily, so the shop team can tell you what bikes and accessories are available right now.",
	booking.ModeMaintenanceTips: "Keep your chain clean and lubed, check tyre pressure weekly and have the brakes looked at when they feel soft.",
	booking.ModePolicyQuestion:  "The shop team can walk you through returns, warranties and delivery. Just ask at the counter or give us a call.",
}

// Templates words replies deterministically. It never fails.
type Templates struct {
	catalog *catalog.Catalog
}

func NewTemplates(cat *catalog.Catalog) *Templates {
	return &Templates{catalog: cat}
}

func (t *Templates) Render(_ context.Context, req Request, emit func(chunk string) error) (string, error) {
	text := t.Text(req.Reply)
	if emit != nil {
		if err := emit(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

// Text is the template wording of reply.
func (t *Templates) Text(reply booking.Reply) string {
	switch reply.Intent {
	case booking.IntentAskField:
		if q, ok := fieldQuestions[reply.Field]; ok {
			return q
		}
		return fmt.Sprintf("Could you tell me your %s?", t.catalog.Label(reply.Field))

	case booking.IntentConfirmSummary:
		var sb strings.Builder
		sb.WriteString("Here's what I have for your appointment:\n")
		sb.WriteString(Summary(t.catalog, reply.Record))
		sb.WriteString("\nShall I book it?")
		return sb.String()

	case booking.IntentReaskYesNo:
		return "Sorry, I didn't catch that. Should I book the appointment as summarized? Please answer yes or no, or tell me what to change."

	case booking.IntentBookingConfirmed:
		return fmt.Sprintf("You're all set! Your %s is booked for %s, %s. Your booking reference is %s.",
			orDefault(reply.Record.Get(catalog.ServiceType), "appointment"),
			orDefault(reply.Record.Get(catalog.PreferredDate), "the agreed day"),
			orDefault(reply.Record.Get(catalog.PreferredTime), "the agreed time"),
			reply.BookingID)

	case booking.IntentBookingCancelled:
		return "No problem, I've cancelled that booking request. Is there anything else I can help with?"

	case booking.IntentCommitFailed:
		return "Sorry, I couldn't complete the booking just now. Your details are kept, so just say yes to try again."

	case booking.IntentSideAnswer:
		return "I can't look that up for you right now, but the shop team will be happy to help with that."

	case booking.IntentModeAnswer:
		if text, ok := modeFallbacks[reply.Mode]; ok {
			return text
		}
		return PromptForMoreText

	case booking.IntentCapabilities:
		return CapabilitiesText

	case booking.IntentUnsafe:
		return UnsafeText

	case booking.IntentRetry:
		return RetryText

	default:
		return PromptForMoreText
	}
}

// Summary lists the populated fields of record in catalog order.
func Summary(cat *catalog.Catalog, record booking.Record) string {
	lines := make([]string, 0, len(record))
	for _, f := range cat.Fields() {
		if v := record.Get(f); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", capitalize(cat.Label(f)), v))
		}
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
