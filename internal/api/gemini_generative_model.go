// Package api provides adapters for the external services Screen Teacher
// depends on: the generative AI providers, the translation service and the
// speech synthesis service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

// GeminiAPI is the adapter for the Google Gemini API. It is the only provider
// that accepts image payloads.
type GeminiAPI struct {
	client      *genai.Client          // Client for API interaction
	model       *genai.GenerativeModel // Model used for content generation
	apiKey      string                 // API key (kept for re-initialization)
	maxTokens   int                    // Maximum output tokens (optional)
	temperature float32                // Creativity control (optional)
}

// NewGeminiAPI creates a new GeminiAPI instance. Creating the client verifies
// the credential shape but performs no network call; an invalid key surfaces
// on the first generation request.
func NewGeminiAPI(apiKey string, modelName string, maxTokens int, temperature float32) (*GeminiAPI, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	if maxTokens > 0 {
		maxToken := int32(maxTokens)
		model.MaxOutputTokens = &maxToken
	}
	if temperature >= 0 && temperature <= 1 {
		model.Temperature = &temperature
	}

	return &GeminiAPI{
		client:      client,
		model:       model,
		apiKey:      apiKey,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// GenerateTextMsg sends the prompt plus an optional text payload and returns
// the trimmed response text.
func (g *GeminiAPI) GenerateTextMsg(prompt, textInput string) (string, error) {
	parts := []genai.Part{genai.Text(prompt)}
	if textInput != "" {
		parts = append(parts, genai.Text(textInput))
	}
	return g.generate(parts)
}

// GenerateImageMsg sends the prompt plus a single image payload and returns
// the trimmed response text.
func (g *GeminiAPI) GenerateImageMsg(prompt string, image []byte) (string, error) {
	contentType := http.DetectContentType(image)
	if !strings.HasPrefix(contentType, "image/") {
		logrus.Errorf("Refusing to send non-image payload to Gemini (detected %s)", contentType)
		return "", models.ErrImageDecode
	}
	parts := []genai.Part{genai.Text(prompt), genai.ImageData(strings.TrimPrefix(contentType, "image/"), image)}
	return g.generate(parts)
}

// generate executes one bounded generation request and classifies the
// response: blocked, empty, or text.
func (g *GeminiAPI) generate(parts []genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constant.GenerateTimeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		logrus.WithError(err).Error("Error creating Gemini request")
		return "", err
	}

	if text, ok := responseText(resp); ok {
		return strings.TrimSpace(text), nil
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		blocked := &models.BlockedError{
			Reason:     fmt.Sprintf("%v", fb.BlockReason),
			SafetyInfo: formatSafetyRatings(fb.SafetyRatings),
		}
		logrus.WithError(blocked).Warn("Gemini response blocked by safety filters")
		return "", blocked
	}

	logrus.Warn("Gemini response received but has no text parts and no feedback info")
	return "", models.ErrEmptyResponse
}

// ChangeGenerativeModelName switches the adapter to another model of the same
// client.
func (g *GeminiAPI) ChangeGenerativeModelName(modelName string) error {
	if modelName == "" {
		return errors.New("model name can't be empty")
	}
	g.model = g.client.GenerativeModel(modelName)
	return nil
}

// responseText concatenates the text parts of the first candidate. The second
// return value is false when no text part is present.
func responseText(resp *genai.GenerateContentResponse) (string, bool) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

func formatSafetyRatings(ratings []*genai.SafetyRating) string {
	if len(ratings) == 0 {
		return "no safety ratings"
	}
	items := make([]string, 0, len(ratings))
	for _, r := range ratings {
		items = append(items, fmt.Sprintf("%v: %v", r.Category, r.Probability))
	}
	return strings.Join(items, ", ")
}
