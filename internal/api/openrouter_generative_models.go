package api

import (
	"strings"

	"github.com/sirupsen/logrus"
	openrouterapigo "github.com/wojtess/openrouter-api-go"

	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

// OpenRouterAPI is the text-only OpenRouter provider adapter.
type OpenRouterAPI struct {
	client      *openrouterapigo.OpenRouterClient // Client for API interaction
	apiKey      string                            // API key (kept for re-initialization)
	modelName   string                            // Generative model version
	maxTokens   int                               // Maximum output tokens (optional)
	temperature float32                           // Creativity control (optional)
}

// NewOpenRouterAPI creates a new OpenRouterAPI instance.
func NewOpenRouterAPI(apiKey string, modelName string, maxTokens int, temperature float32) (*OpenRouterAPI, error) {
	client := openrouterapigo.NewOpenRouterClient(apiKey)

	return &OpenRouterAPI{
		client:      client,
		modelName:   modelName,
		apiKey:      apiKey,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// GenerateTextMsg sends the prompt plus an optional text payload as one user
// message and returns the trimmed response text.
func (o *OpenRouterAPI) GenerateTextMsg(prompt, textInput string) (string, error) {
	content := prompt
	if textInput != "" {
		content = prompt + "\n\n" + textInput
	}

	chatReq := openrouterapigo.Request{
		Model: o.modelName,
		Messages: []openrouterapigo.MessageRequest{
			{Role: openrouterapigo.RoleUser, Content: openrouterapigo.TextContent(content)},
		},
	}

	resp, err := o.client.FetchChatCompletions(chatReq)
	if err != nil {
		logrus.WithError(err).Errorf("Error creating %s request", o.modelName)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", models.ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImageMsg always fails: the OpenRouter chat adapter carries text
// messages only.
func (o *OpenRouterAPI) GenerateImageMsg(_ string, _ []byte) (string, error) {
	return "", models.ErrNoVisionSupport
}
