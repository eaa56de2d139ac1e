// Package nlu holds the language understanding collaborators of the booking
// machine: model backed ones and lexical ones that need no model.
package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/llm"
	"github.com/SaiNageswarS/booking-agent/memory"
	"github.com/SaiNageswarS/go-collection-boot/async"
)

var errNoJSON = errors.New("no JSON object in model output")

// classifier holds what every model backed collaborator needs.
type classifier struct {
	client llm.LLMClient
	window *memory.Window
	model  string
}

// complete runs one non-streaming inference and returns the full text.
func (c classifier) complete(ctx context.Context, system string, sc booking.SessionContext, utterance string, jsonOutput bool) <-chan async.Result[string] {
	return async.Go(func() (string, error) {
		opts := []llm.LLMOption{
			llm.WithSystemPrompt(system),
			llm.WithTemperature(0),
			llm.WithMaxTokens(256),
			llm.WithModel(c.model),
		}
		if jsonOutput {
			opts = append(opts, llm.WithJSONOutput())
		}

		var sb strings.Builder
		messages := c.window.Messages(sc.SessionID, sc.History, utterance)
		err := c.client.GenerateInference(ctx, messages, func(chunk string) error {
			sb.WriteString(chunk)
			return nil
		}, opts...)
		if err != nil {
			return "", err
		}
		return sb.String(), nil
	})
}

// parseJSONObject decodes the first JSON object found in text. Models often
// wrap the object in prose or code fences.
func parseJSONObject(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, errNoJSON
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("malformed model output: %w", err)
	}
	return out, nil
}

// stringValue renders a decoded JSON scalar as text. Objects, arrays and
// null yield "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
