package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"
	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

// DeepSeekAPI is the text-only DeepSeek provider adapter.
type DeepSeekAPI struct {
	client      deepseek.Client // Client for API interaction
	apiKey      string          // API key (kept for re-initialization)
	modelName   string          // Generative model version
	maxTokens   int             // Maximum output tokens (optional)
	temperature float32         // Creativity control (optional)
}

// NewDeepSeekAPI creates a new DeepSeekAPI instance.
func NewDeepSeekAPI(apiKey string, modelName string, maxTokens int, temperature float32) (*DeepSeekAPI, error) {
	client, err := deepseek.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepSeek client: %w", err)
	}

	return &DeepSeekAPI{
		client:      client,
		modelName:   modelName,
		apiKey:      apiKey,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// GenerateTextMsg sends the prompt plus an optional text payload as one user
// message and returns the trimmed response text.
func (d *DeepSeekAPI) GenerateTextMsg(prompt, textInput string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constant.GenerateTimeout)
	defer cancel()

	content := prompt
	if textInput != "" {
		content = prompt + "\n\n" + textInput
	}

	chatReq := &request.ChatCompletionsRequest{
		Model:  d.modelName,
		Stream: false,
		Messages: []*request.Message{
			{Role: "user", Content: content},
		},
		MaxTokens:   d.maxTokens,
		Temperature: &d.temperature,
	}

	resp, err := d.client.CallChatCompletionsChat(ctx, chatReq)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		logrus.WithError(err).Error("Error creating DeepSeek request")
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", models.ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImageMsg always fails: DeepSeek chat completions accept no image
// payload.
func (d *DeepSeekAPI) GenerateImageMsg(_ string, _ []byte) (string, error) {
	return "", models.ErrNoVisionSupport
}
