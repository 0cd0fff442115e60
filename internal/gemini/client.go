// Package gemini implements the generative augmentation layer for meeting
// preparation using Google's Gemini API. It is optional: the service runs
// without it and callers fall back to deterministic synthesis on any error.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/relatahq/oracle/internal/config"
	"github.com/relatahq/oracle/internal/meetingprep"
)

type sdkClient struct {
	genaiClient      *genai.Client
	log              *slog.Logger
	contentConfig    *genai.GenerateContentConfig
	defaultModelName string
	callTimeout      time.Duration
	maxRetries       int
	retryDelay       time.Duration
}

// NewClient creates a Gemini-backed meeting prep generator. It returns an
// error when no API key is configured; callers treat that as "generative
// layer absent", not a fault.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (meetingprep.Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	maxTokens := cfg.MaxOutputTokens
	baseCfg := &genai.GenerateContentConfig{
		Temperature:      &cfg.Temperature,
		MaxOutputTokens:  maxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   meetingPrepSchema,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: MeetingPrepSystemInstruction}},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:      gi,
		log:              logger,
		contentConfig:    baseCfg,
		defaultModelName: cfg.ModelName,
		callTimeout:      cfg.Timeout,
		maxRetries:       cfg.MaxRetries,
		retryDelay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// meetingPrepSchema constrains the model to the MeetingPrep shape. Attendee
// profiles and the confidence score are attached locally, not generated.
var meetingPrepSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":               {Type: genai.TypeString, Description: "Two to three sentence meeting brief."},
		"talking_points":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Specific talking points grounded in the attendee profiles."},
		"challenges":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Potential challenges to prepare for."},
		"opportunities":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Opportunities to pursue in the meeting."},
		"conversation_starters": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "One personalized opener per attendee."},
		"follow_up_actions":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Concrete follow-up actions after the meeting."},
	},
	Required: []string{"summary", "talking_points", "challenges", "opportunities", "conversation_starters", "follow_up_actions"},
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.defaultModelName, contents, c.contentConfig)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry",
			"attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call", "delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

// GenerateMeetingPrep implements meetingprep.Generator. The call is bounded
// by the configured timeout; any failure (network, blocked prompt, parse)
// is returned to the caller, which falls back deterministically.
func (c *sdkClient) GenerateMeetingPrep(ctx context.Context, req meetingprep.PrepRequest, profiles []meetingprep.AttendeeProfile) (*meetingprep.MeetingPrep, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	prompt, err := BuildMeetingPrepPrompt(req, profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to build meeting prep prompt: %w", err)
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(callCtx, contents)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini meeting prep generation failed", "error", err)
		return nil, err
	}

	jsonText, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
			return nil, fmt.Errorf("gemini meeting prep blocked: %s", resp.PromptFeedback.BlockReasonMessage)
		}
		return nil, fmt.Errorf("failed to extract meeting prep response: %w", err)
	}

	var generated struct {
		Summary              string   `json:"summary"`
		TalkingPoints        []string `json:"talking_points"`
		Challenges           []string `json:"challenges"`
		Opportunities        []string `json:"opportunities"`
		ConversationStarters []string `json:"conversation_starters"`
		FollowUpActions      []string `json:"follow_up_actions"`
	}
	if err := json.Unmarshal([]byte(jsonText), &generated); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse meeting prep JSON from Gemini response",
			"error", err, "response_text", jsonText)
		return nil, fmt.Errorf("invalid meeting prep JSON received: %w", err)
	}

	return &meetingprep.MeetingPrep{
		Summary:              generated.Summary,
		AttendeeProfiles:     profiles,
		TalkingPoints:        generated.TalkingPoints,
		Challenges:           generated.Challenges,
		Opportunities:        generated.Opportunities,
		ConversationStarters: generated.ConversationStarters,
		FollowUpActions:      generated.FollowUpActions,
		ConfidenceScore:      generativeConfidence(len(profiles)),
	}, nil
}

// generativeConfidence scales with how many attendees resolved to known
// contacts, capped at 95.
func generativeConfidence(attendeeCount int) int {
	score := 70 + 5*attendeeCount
	if score > 95 {
		return 95
	}
	return score
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		c.log.WarnContext(ctx, "Gemini candidate had no content parts", "finish_reason", candidate.FinishReason)
		return "", fmt.Errorf("gemini candidate had no content")
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("gemini candidate text was empty")
	}
	return text, nil
}
