package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
)

// SpeechSynthesizer defines the speech operations consumed by the service
// layer.
type SpeechSynthesizer interface {
	Synthesize(text, langCode string) ([]byte, error) // Converts text to MP3 audio bytes.
}

// GoogleSpeechAPI manages interactions with the Google Translate TTS endpoint.
// The endpoint returns MP3 audio for short text fragments; longer text is
// split on whitespace and the returned MPEG streams are concatenated, which is
// valid because MPEG frames are self-delimiting.
type GoogleSpeechAPI struct {
	endpoint string       // Endpoint URL for the speech API.
	client   *http.Client // HTTP client
}

// NewGoogleSpeechAPI creates a new instance of GoogleSpeechAPI with the
// specified endpoint.
func NewGoogleSpeechAPI(endpoint string) *GoogleSpeechAPI {
	return &GoogleSpeechAPI{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Synthesize converts text to speech in the given language.
// Arguments:
//   - text: the text to voice; must be non-empty.
//   - langCode: speech language code (e.g., "en", "en-gb", "te").
//
// Returns the MP3 audio bytes or an error if any fragment request fails.
func (s *GoogleSpeechAPI) Synthesize(text, langCode string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot synthesize empty text")
	}

	var audio []byte
	for _, fragment := range splitForSpeech(text, constant.SpeechChunkLimit) {
		data, err := s.fetchFragment(fragment, langCode)
		if err != nil {
			return nil, err
		}
		audio = append(audio, data...)
	}
	return audio, nil
}

func (s *GoogleSpeechAPI) fetchFragment(text, langCode string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", langCode)
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		logrus.WithError(err).Error("Error creating Synthesize request")
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to execute Synthesize request to %s", s.endpoint)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err = res.Body.Close(); err != nil {
			logrus.WithError(err).Errorf("Failed to close response body: %v", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		err = fmt.Errorf("unexpected status code: %d, body: %s", res.StatusCode, string(data))
		logrus.WithError(err).Errorf("Synthesize failed with status: %s", res.Status)
		return nil, err
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		logrus.WithError(err).Error("Failed to read Synthesize response")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) == 0 {
		err = fmt.Errorf("no audio returned")
		logrus.WithError(err).Error("Synthesize response is empty")
		return nil, err
	}
	return data, nil
}

// splitForSpeech cuts text into fragments of at most limit characters,
// breaking on whitespace so words are never split mid-syllable.
func splitForSpeech(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var fragments []string
	var current strings.Builder
	for _, word := range words {
		// A single oversized word still goes out whole; the endpoint truncates
		// rather than rejects.
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			fragments = append(fragments, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		fragments = append(fragments, current.String())
	}
	return fragments
}
