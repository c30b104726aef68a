// Package service holds the core logic of Screen Teacher: the per-session
// action orchestrator that sequences the generative model, the translation
// service and the speech synthesizer, and writes results back into the
// session state.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG for upload validation
	_ "image/png"  // register PNG for upload validation
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

// GenerativeModel defines the generative AI operations used by the
// orchestrator. Exactly one of the image/text payloads accompanies a prompt;
// adapters that cannot accept images return models.ErrNoVisionSupport.
type GenerativeModel interface {
	GenerateTextMsg(prompt, textInput string) (string, error)
	GenerateImageMsg(prompt string, image []byte) (string, error)
}

// ModelProvider hands out the configured generative model. Implementations
// cache the client for the session and remember a failed configuration so it
// is not retried until the credential changes.
type ModelProvider interface {
	Model() (GenerativeModel, error)
	Configured() bool
	KeySource() string
}

// Translator translates one bounded text chunk, auto-detecting the source
// language.
type Translator interface {
	TranslateChunk(text, targetLang string) (string, error)
}

// SpeechSynthesizer converts text to audio bytes.
type SpeechSynthesizer interface {
	Synthesize(text, langCode string) ([]byte, error)
}

// SessionRepository is the session-state store consumed by the orchestrator.
type SessionRepository interface {
	Snapshot(chatID int64) models.Session
	Log(chatID int64, message string)
	BeginAction(chatID int64, action models.Action) bool
	FinishAction(chatID int64)
	SetImage(chatID int64, img []byte)
	SetExplanation(chatID int64, text string)
	SetResult(chatID int64, text string, audio []byte)
	Settings(chatID int64) models.Settings
	UpdateSettings(chatID int64, settings models.Settings) error
}

// TeacherService is the action orchestrator. All methods are safe for the
// single-turn-at-a-time model: the session's processing flag is the only
// mutual-exclusion guard, and every turn runs to completion synchronously.
type TeacherService struct {
	Provider   ModelProvider
	Translator Translator
	Speech     SpeechSynthesizer
	Repository SessionRepository
}

// NewTeacherService creates a TeacherService with the given dependencies.
func NewTeacherService(provider ModelProvider, translator Translator, speech SpeechSynthesizer, repository SessionRepository) *TeacherService {
	return &TeacherService{
		Provider:   provider,
		Translator: translator,
		Speech:     speech,
		Repository: repository,
	}
}

// actionSpec pairs an action with its post-processing pipeline and context
// policy. Keeping the five behaviors in one table stops them drifting apart.
type actionSpec struct {
	usesAI      bool
	usesImage   bool
	setsContext bool // success text becomes the follow-up context; otherwise context is cleared
	fullClean   bool // symbol sanitization; read actions only collapse whitespace
}

var actionTable = map[models.Action]actionSpec{
	models.ActionExplainImage: {usesAI: true, usesImage: true, setsContext: true, fullClean: true},
	models.ActionReadImage:    {usesAI: true, usesImage: true},
	models.ActionExplainText:  {usesAI: true, setsContext: true, fullClean: true},
	models.ActionReadText:     {},
	models.ActionFollowUp:     {usesAI: true, setsContext: true, fullClean: true},
}

// HandleAction executes one complete turn for the given action and returns
// the post-turn session snapshot. Guard-rejected triggers leave the session
// untouched. The processing flag and the pending action are always cleared on
// exit, even if a procedure panics.
func (s *TeacherService) HandleAction(chatID int64, action models.Action, input models.ActionInput) models.Session {
	spec, ok := actionTable[action]
	if !ok {
		logrus.Errorf("Rejected unknown action %q for chat %d", action, chatID)
		return s.Repository.Snapshot(chatID)
	}

	snap := s.Repository.Snapshot(chatID)
	if err := validateInput(action, snap, input); err != nil {
		s.Repository.Log(chatID, fmt.Sprintf("Cannot start %s: %v", action, err))
		return s.Repository.Snapshot(chatID)
	}

	if !s.Repository.BeginAction(chatID, action) {
		logrus.Warnf("Rejected action %s for chat %d: another action is in flight", action, chatID)
		return s.Repository.Snapshot(chatID)
	}
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Panic during action %s: %v", action, r)
			s.Repository.SetResult(chatID, fmt.Sprintf("%s internal failure during %s: %v", constant.ErrorMarker, action, r), nil)
		}
		s.Repository.FinishAction(chatID)
		s.Repository.Log(chatID, fmt.Sprintf("Finished processing action: %s", action))
	}()

	s.Repository.Log(chatID, fmt.Sprintf("Starting processing for action: %s", action))

	model, err := s.Provider.Model()
	if err != nil {
		s.Repository.Log(chatID, fmt.Sprintf("Processing blocked for action '%s': API not configured.", action))
		s.Repository.SetResult(chatID, fmt.Sprintf("%s Gemini model failed to configure. Check API Key and logs.", constant.ErrorMarker), nil)
		return s.Repository.Snapshot(chatID)
	}

	settings := s.Repository.Settings(chatID)
	finalText := s.runProcedure(chatID, action, spec, snap, input, model, settings)

	switch {
	case finalText != "" && !models.IsErrorText(finalText):
		audio := s.synthesize(chatID, finalText, settings.TTSLangCode)
		if audio == nil {
			finalText += constant.AudioFailureNote
			s.Repository.Log(chatID, "Audio generation failed.")
		}
		s.Repository.SetResult(chatID, finalText, audio)
	case finalText != "":
		s.Repository.Log(chatID, fmt.Sprintf("Skipping audio generation due to error text: %.100s", finalText))
		s.Repository.SetResult(chatID, finalText, nil)
	default:
		s.Repository.Log(chatID, "No text generated or extracted to speak.")
		s.Repository.SetResult(chatID, constant.NoContentMessage, nil)
	}

	return s.Repository.Snapshot(chatID)
}

// runProcedure performs the per-action AI call and post-processing pipeline
// and returns the final text of the turn (possibly an error-marker text).
func (s *TeacherService) runProcedure(chatID int64, action models.Action, spec actionSpec, snap models.Session, input models.ActionInput, model GenerativeModel, settings models.Settings) string {
	if !spec.usesAI {
		// ReadText bypasses the model entirely.
		s.Repository.SetExplanation(chatID, "")
		cleaned := CollapseWhitespace(input.Text)
		return s.translateIfNeeded(chatID, cleaned, settings.TranslateLangCode, settings.TranslateLangName)
	}

	var prompt string
	switch action {
	case models.ActionExplainImage, models.ActionExplainText:
		prompt = constant.ExplainPrompt
	case models.ActionReadImage:
		prompt = constant.ReadImagePrompt
	case models.ActionFollowUp:
		prompt = fmt.Sprintf(constant.FollowUpPrompt, snap.LastExplanation, input.Text)
	}

	var raw string
	if spec.usesImage {
		s.Repository.Log(chatID, "Sending image to the AI model...")
		raw = s.query(chatID, model, prompt, snap.LastUploadedImage, "")
	} else if action == models.ActionFollowUp {
		raw = s.query(chatID, model, prompt, nil, "")
	} else {
		s.Repository.Log(chatID, "Sending text to the AI model...")
		raw = s.query(chatID, model, prompt, nil, input.Text)
	}

	if models.IsErrorText(raw) {
		s.Repository.Log(chatID, fmt.Sprintf("AI returned an error: %.100s", raw))
		return raw
	}

	var cleaned string
	if spec.fullClean {
		cleaned = Sanitize(raw)
	} else {
		cleaned = CollapseWhitespace(raw)
	}
	if spec.setsContext {
		s.Repository.SetExplanation(chatID, cleaned)
	} else {
		// Reading never establishes follow-up context.
		s.Repository.SetExplanation(chatID, "")
	}
	return s.translateIfNeeded(chatID, cleaned, settings.TranslateLangCode, settings.TranslateLangName)
}

// query invokes the model with a prompt plus at most one payload (image takes
// precedence) and converts every failure into a marker text. It never lets an
// error escape.
func (s *TeacherService) query(chatID int64, model GenerativeModel, prompt string, imageBytes []byte, textInput string) string {
	var out string
	var err error
	if len(imageBytes) > 0 {
		out, err = model.GenerateImageMsg(prompt, imageBytes)
	} else {
		out, err = model.GenerateTextMsg(prompt, textInput)
	}
	if err == nil {
		return out
	}

	var blocked *models.BlockedError
	switch {
	case errors.As(err, &blocked):
		return fmt.Sprintf("%s AI response blocked. Reason: %s. Ratings: %s", constant.ErrorMarker, blocked.Reason, blocked.SafetyInfo)
	case errors.Is(err, models.ErrEmptyResponse):
		return constant.ErrorMarker + " AI generated an empty response (possibly due to safety filters or content restrictions)."
	case errors.Is(err, models.ErrImageDecode):
		return constant.ErrorMarker + " Could not read image data."
	case errors.Is(err, models.ErrNoVisionSupport):
		return constant.ErrorMarker + " The configured AI model cannot analyze images."
	default:
		logrus.WithError(err).Error("AI request failed")
		s.Repository.Log(chatID, fmt.Sprintf("AI API error during generation: %v", err))
		return fmt.Sprintf("%s Could not get response from AI during generation. Details: %v", constant.ErrorMarker, err)
	}
}

// translateIfNeeded translates text when a target is selected, chunking at
// the service-side size limit. An empty code and the English sentinel both
// disable translation. Translation failure is non-fatal: the original text
// passes through so speech synthesis still runs.
func (s *TeacherService) translateIfNeeded(chatID int64, text, targetCode, targetName string) string {
	if targetCode == "" || targetCode == "en" {
		return text
	}
	if text == "" {
		s.Repository.Log(chatID, "Cannot translate empty text.")
		return ""
	}

	s.Repository.Log(chatID, fmt.Sprintf("Translating to %s (%s)...", targetName, targetCode))
	runes := []rune(text)
	var b strings.Builder
	for i := 0; i < len(runes); i += constant.TranslateChunkLimit {
		end := i + constant.TranslateChunkLimit
		if end > len(runes) {
			end = len(runes)
		}
		if i > 0 {
			time.Sleep(constant.TranslateChunkPause)
		}
		chunk, err := s.Translator.TranslateChunk(string(runes[i:end]), targetCode)
		if err != nil {
			logrus.WithError(err).Warn("Translation failed, using original text")
			s.Repository.Log(chatID, fmt.Sprintf("Translation error: %v. Using original text.", err))
			return text
		}
		b.WriteString(chunk)
		b.WriteString(" ")
	}
	s.Repository.Log(chatID, "Translation successful.")
	return strings.TrimSpace(b.String())
}

// synthesize produces audio for the final turn text. Empty text returns nil
// without a service call; failures are logged and reported as nil, never
// retried.
func (s *TeacherService) synthesize(chatID int64, text, langCode string) []byte {
	if text == "" {
		s.Repository.Log(chatID, "Cannot generate speech from empty text.")
		return nil
	}
	s.Repository.Log(chatID, fmt.Sprintf("Generating speech in language: %s...", langCode))
	audio, err := s.Speech.Synthesize(text, langCode)
	if err != nil {
		logrus.WithError(err).Error("Speech synthesis failed")
		s.Repository.Log(chatID, fmt.Sprintf("Speech generation error: %v", err))
		return nil
	}
	s.Repository.Log(chatID, "Speech generated successfully.")
	return audio
}

// UploadImage validates and stores an uploaded screenshot as the session's
// current image. Only PNG and JPEG are accepted.
func (s *TeacherService) UploadImage(chatID int64, data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		logrus.WithError(err).Error("Rejected image upload")
		s.Repository.Log(chatID, fmt.Sprintf("Could not process uploaded image file: %v", err))
		return models.ErrImageDecode
	}
	s.Repository.SetImage(chatID, data)
	s.Repository.Log(chatID, fmt.Sprintf("Screenshot stored (%d bytes).", len(data)))
	return nil
}

// Snapshot returns a copy of the session state for rendering.
func (s *TeacherService) Snapshot(chatID int64) models.Session {
	return s.Repository.Snapshot(chatID)
}

// UpdateSettings validates and applies new user settings.
func (s *TeacherService) UpdateSettings(chatID int64, settings models.Settings) error {
	if err := s.Repository.UpdateSettings(chatID, settings); err != nil {
		return err
	}
	s.Repository.Log(chatID, fmt.Sprintf("Settings updated: voice %s, translate to %s, speed %.1fx.",
		settings.TTSLangCode, settings.TranslateLangName, settings.AudioSpeed))
	return nil
}

// Configured reports whether the generative credential is usable; frontends
// disable AI-dependent controls when it is false.
func (s *TeacherService) Configured() bool {
	return s.Provider.Configured()
}

// KeySource names where the credential came from, for the status surface.
func (s *TeacherService) KeySource() string {
	return s.Provider.KeySource()
}

// validateInput enforces the per-action guard on required inputs.
func validateInput(action models.Action, snap models.Session, input models.ActionInput) error {
	switch action {
	case models.ActionExplainImage, models.ActionReadImage:
		if len(snap.LastUploadedImage) == 0 {
			return errors.New("no image has been uploaded")
		}
	case models.ActionExplainText, models.ActionReadText:
		if input.Text == "" {
			return errors.New("no text provided")
		}
	case models.ActionFollowUp:
		if input.Text == "" {
			return errors.New("no follow-up text provided")
		}
		if snap.LastExplanation == "" {
			return errors.New("no previous explanation context found for follow-up")
		}
	}
	return nil
}
