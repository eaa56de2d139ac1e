package render

import (
	"context"
	"testing"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullRecord = booking.Record{
	catalog.ServiceType:   "tune-up",
	catalog.PreferredDate: "Tuesday",
	catalog.PreferredTime: "morning",
}

func TestTemplates_Text(t *testing.T) {
	tpl := NewTemplates(catalog.Default())

	tests := []struct {
		name     string
		reply    booking.Reply
		contains []string
	}{
		{"ask date", booking.Reply{Intent: booking.IntentAskField, Field: catalog.PreferredDate}, []string{"What day"}},
		{"ask unknown field", booking.Reply{Intent: booking.IntentAskField, Field: "frame_size"}, []string{"frame size"}},
		{"summary", booking.Reply{Intent: booking.IntentConfirmSummary, Record: fullRecord},
			[]string{"- Service type: tune-up\n- Preferred date: Tuesday\n- Preferred time: morning", "Shall I book it?"}},
		{"confirmed", booking.Reply{Intent: booking.IntentBookingConfirmed, Record: fullRecord, BookingID: "bk-42"},
			[]string{"tune-up", "Tuesday", "morning", "bk-42"}},
		{"cancelled", booking.Reply{Intent: booking.IntentBookingCancelled}, []string{"cancelled"}},
		{"commit failed", booking.Reply{Intent: booking.IntentCommitFailed}, []string{"try again"}},
		{"reask", booking.Reply{Intent: booking.IntentReaskYesNo}, []string{"yes or no"}},
		{"capabilities", booking.Reply{Intent: booking.IntentCapabilities}, []string{"Service Appointments"}},
		{"unsafe", booking.Reply{Intent: booking.IntentUnsafe}, []string{UnsafeText}},
		{"prompt for more", booking.Reply{Intent: booking.IntentPromptForMore}, []string{PromptForMoreText}},
		{"mode answer", booking.Reply{Intent: booking.IntentModeAnswer, Mode: booking.ModeMaintenanceTips}, []string{"chain"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tpl.Text(tt.reply)
			for _, c := range tt.contains {
				assert.Contains(t, text, c)
			}
		})
	}
}

func TestTemplates_RenderEmitsOnce(t *testing.T) {
	tpl := NewTemplates(catalog.Default())

	var chunks []string
	text, err := tpl.Render(context.Background(), Request{Reply: booking.Reply{Intent: booking.IntentBookingCancelled}}, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{text}, chunks)
}

func TestSummary_SkipsEmptyAndKeepsCatalogOrder(t *testing.T) {
	record := booking.Record{
		catalog.ContactInfo:   "555-0100",
		catalog.ServiceType:   "repair",
		catalog.PreferredDate: " ",
	}
	assert.Equal(t, "- Service type: repair\n- Contact info: 555-0100", Summary(catalog.Default(), record))
}
