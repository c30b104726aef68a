package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Translator defines the translation operations consumed by the service
// layer.
type Translator interface {
	TranslateChunk(text, targetLang string) (string, error) // Translates one chunk, source auto-detected.
}

// GoogleTranslateAPI manages interactions with the Google Translate web
// endpoint. The source language is always auto-detected by the service.
type GoogleTranslateAPI struct {
	endpoint string       // Endpoint URL for the translation API.
	client   *http.Client // HTTP client
}

// NewGoogleTranslateAPI creates a new instance of GoogleTranslateAPI with the
// specified endpoint.
func NewGoogleTranslateAPI(endpoint string) *GoogleTranslateAPI {
	return &GoogleTranslateAPI{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// TranslateChunk translates one text chunk to the target language.
// Arguments:
//   - text: the chunk to translate; must not exceed the service-side size limit.
//   - targetLang: target language code (e.g., "es").
//
// Returns the translated chunk or an error if the request fails.
func (g *GoogleTranslateAPI) TranslateChunk(text, targetLang string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.client.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", targetLang)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		logrus.WithError(err).Error("Error creating TranslateChunk request")
		return "", err
	}

	res, err := g.client.Do(req)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to execute TranslateChunk request to %s", g.endpoint)
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err = res.Body.Close(); err != nil {
			logrus.WithError(err).Errorf("Failed to close response body: %v", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		err = fmt.Errorf("unexpected status code: %d, body: %s", res.StatusCode, string(data))
		logrus.WithError(err).Errorf("TranslateChunk failed with status: %s", res.Status)
		return "", err
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		logrus.WithError(err).Error("Failed to read TranslateChunk response")
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	translated, detected, err := parseTranslateResponse(data)
	if err != nil {
		logrus.WithError(err).Error("Failed to unmarshal TranslateChunk response")
		return "", err
	}

	logrus.Infof("Translated chunk from %s to %s (%d chars)", detected, targetLang, len(translated))
	return translated, nil
}

// parseTranslateResponse decodes the endpoint's positional JSON. The payload
// is a nested array rather than an object: element 0 holds the sentence list
// (each sentence is [translated, original, ...]) and element 2 the detected
// source language.
func parseTranslateResponse(data []byte) (translated, detectedLang string, err error) {
	var outer []json.RawMessage
	if err = json.Unmarshal(data, &outer); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(outer) == 0 {
		return "", "", fmt.Errorf("no translations returned")
	}

	var sentences [][]json.RawMessage
	if err = json.Unmarshal(outer[0], &sentences); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal sentence list: %w", err)
	}

	var b []byte
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		var part string
		if err = json.Unmarshal(sentence[0], &part); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal sentence: %w", err)
		}
		b = append(b, part...)
	}
	if len(b) == 0 {
		return "", "", fmt.Errorf("no translations returned")
	}

	if len(outer) > 2 {
		// Best effort: the detected language is informational only.
		_ = json.Unmarshal(outer[2], &detectedLang)
	}
	return string(b), detectedLang, nil
}
