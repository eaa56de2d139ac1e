package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

// ShopName is the shop the assistant speaks for.
const ShopName = "JO's Bike Shop"

var funcs = template.FuncMap{
	"join": strings.Join,
}

// modeInstructions are prepended to non-booking questions.
var modeInstructions = map[string]string{
	"shop_info":        "Please provide information about " + ShopName + " (hours, location, contact) based on the following query",
	"product_inquiry":  "Please help the customer with their product inquiry about bikes or accessories",
	"book_appointment": "Please assist the customer with booking a service appointment",
	"maintenance_tips": "Please provide helpful bike maintenance tips for the following",
	"policy_question":  "Please answer the customer's question about shop policies (returns, warranties, delivery)",
}

// Field describes one appointment field to the extraction prompt.
type Field struct {
	Name     string
	Label    string
	Required bool
}

func RenderModeRouterPrompt(modes []string) (string, error) {
	return loadPrompt("mode_router_system.md", struct {
		ShopName string
		Modes    []string
	}{ShopName, modes})
}

func RenderExtractionPrompt(fields []Field, record map[string]string) (string, error) {
	return loadPrompt("extract_fields_system.md", struct {
		ShopName string
		Fields   []Field
		Record   map[string]string
	}{ShopName, fields, record})
}

func RenderConfirmationPrompt(summary string) (string, error) {
	return loadPrompt("confirmation_system.md", struct {
		ShopName string
		Summary  string
	}{ShopName, summary})
}

func RenderDetourPrompt(pending string) (string, error) {
	return loadPrompt("detour_system.md", struct {
		ShopName string
		Pending  string
	}{ShopName, pending})
}

// RenderModeAnswerPrompt returns the system prompt for answering a question
// in the given mode. Unknown modes get a generic instruction.
func RenderModeAnswerPrompt(mode string) (string, error) {
	instruction, ok := modeInstructions[mode]
	if !ok {
		instruction = "Please answer the customer's question about the shop"
	}
	return loadPrompt("mode_answer_system.md", struct {
		ShopName    string
		Instruction string
	}{ShopName, instruction})
}

// RenderReplyPrompt asks a model to reword a deterministic draft reply.
func RenderReplyPrompt(draft string) (string, error) {
	return loadPrompt("reply_system.md", struct {
		ShopName string
		Draft    string
	}{ShopName, draft})
}

func loadPrompt(name string, data any) (string, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
