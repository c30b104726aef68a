// Package generative selects and caches the configured generative AI backend.
package generative

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/api"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
	teacherServ "github.com/DenisKhanov/ScreenTeacher/internal/service"
)

// generativeCreator defines a function to create a GenerativeModel.
type generativeCreator func(apiKey, modelName string, maxTokens int, temperature float32) (teacherServ.GenerativeModel, error)

// generativeRegistry stores registered implementations.
var generativeRegistry = map[string]generativeCreator{
	"gemini": func(apiKey, modelName string, maxTokens int, temperature float32) (teacherServ.GenerativeModel, error) {
		return api.NewGeminiAPI(apiKey, modelName, maxTokens, temperature)
	},
	"deepseek": func(apiKey, modelName string, maxTokens int, temperature float32) (teacherServ.GenerativeModel, error) {
		return api.NewDeepSeekAPI(apiKey, modelName, maxTokens, temperature)
	},
	"openrouter": func(apiKey, modelName string, maxTokens int, temperature float32) (teacherServ.GenerativeModel, error) {
		return api.NewOpenRouterAPI(apiKey, modelName, maxTokens, temperature)
	},
}

// ModelFactory creates a GenerativeModel implementation based on the provider
// name from the configuration.
func ModelFactory(generativeName, apiKey, modelName string, maxTokens int, temperature float32) (teacherServ.GenerativeModel, error) {
	creator, exists := generativeRegistry[generativeName]
	if !exists {
		return nil, fmt.Errorf("unsupported GENERATIVE_NAME: %s (expected 'gemini', 'deepseek' or 'openrouter')", generativeName)
	}
	return creator(apiKey, modelName, maxTokens, temperature)
}

// Provider lazily builds the configured model and caches it for the session.
// A failed build is remembered per key value, so a broken credential is not
// re-attempted on every call; changing the key clears the failure.
type Provider struct {
	generativeName string
	modelName      string
	keySource      string

	mu        sync.Mutex
	apiKey    string
	model     teacherServ.GenerativeModel
	failedKey string
	lastErr   error
}

// NewProvider creates a Provider for the given backend and credential. An
// empty apiKey is legal: Model then reports models.ErrCredentialMissing until
// SetAPIKey supplies a usable value.
func NewProvider(generativeName, apiKey, keySource, modelName string) *Provider {
	return &Provider{
		generativeName: generativeName,
		modelName:      modelName,
		keySource:      keySource,
		apiKey:         apiKey,
	}
}

// Model returns the cached generative model, building it on first use.
func (p *Provider) Model() (teacherServ.GenerativeModel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model != nil {
		return p.model, nil
	}
	if p.apiKey == "" {
		return nil, models.ErrCredentialMissing
	}
	if p.failedKey == p.apiKey {
		return nil, p.lastErr
	}

	logrus.Infof("Attempting to configure %s model %s (key source: %s)...", p.generativeName, p.modelName, p.keySource)
	model, err := ModelFactory(p.generativeName, p.apiKey, p.modelName, 0, 1.0)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to initialize %s service", p.generativeName)
		p.failedKey = p.apiKey
		p.lastErr = fmt.Errorf("generative service not initialized: %w", err)
		return nil, p.lastErr
	}
	logrus.Info("Generative model initialized")
	p.model = model
	return p.model, nil
}

// SetAPIKey replaces the credential and drops the cached client and any
// remembered failure, so the next Model call re-attempts configuration.
func (p *Provider) SetAPIKey(apiKey string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if apiKey == p.apiKey {
		return
	}
	p.apiKey = apiKey
	p.model = nil
	p.failedKey = ""
	p.lastErr = nil
}

// Configured reports whether a usable credential is present.
func (p *Provider) Configured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apiKey != "" && p.failedKey != p.apiKey
}

// KeySource names where the credential was found.
func (p *Provider) KeySource() string {
	return p.keySource
}
