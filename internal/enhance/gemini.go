package enhance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

const (
	agendaInstruction = "You are a church secretary. Turn raw meeting notes into clear, warm and well organised " +
		"ministry minutes. Use only facts present in the notes; write \"None identified\" for empty sections."
	summaryInstruction = "You are a church secretary. Write a concise overall summary of a meeting whose notes " +
		"cover several agenda items. Use only facts present in the notes."
)

// Gemini enhances notes with the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini enhancer.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Enhance(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	instruction, prompt := buildPrompt(req)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", upstreamError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &UpstreamError{Status: http.StatusInternalServerError, Message: "Unexpected response format from AI service"}
	}
	return text, nil
}

func buildPrompt(req Request) (instruction, prompt string) {
	if IsOverallSummary(req.RawNotes) {
		return summaryInstruction, "Summarise this meeting. Cover outcomes, finances, decisions, " +
			"action items (as a markdown table), prayer requests and next priorities.\n\nNotes:\n" + req.RawNotes
	}
	title := strings.TrimSpace(req.AgendaTitle)
	if title == "" {
		title = "Untitled agenda item"
	}
	return agendaInstruction, fmt.Sprintf("Write the minutes for the agenda item %q. Cover its purpose, "+
		"approved expenses with totals, decisions, action items with owners and prayer requests.\n\nNotes:\n%s",
		title, req.RawNotes)
}

func upstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.Code, Message: "AI service error", Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &UpstreamError{Status: apiErrPtr.Code, Message: "AI service error", Err: err}
	}
	return &UpstreamError{Status: http.StatusBadGateway, Message: "AI service unreachable", Err: err}
}
