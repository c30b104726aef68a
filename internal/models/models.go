// Package models defines the shared data types of the Screen Teacher
// application: user actions, session state, settings and the error values
// produced by the external-service adapters.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
)

// Action identifies one of the user-triggered operations.
type Action string

const (
	ActionNone         Action = ""
	ActionExplainImage Action = "explain_image"
	ActionReadImage    Action = "read_image"
	ActionExplainText  Action = "explain_text"
	ActionReadText     Action = "read_text"
	ActionFollowUp     Action = "follow_up"
)

// ParseAction maps an action name delivered by a frontend to its Action value.
// Returns an error for unknown names.
func ParseAction(name string) (Action, error) {
	switch Action(name) {
	case ActionExplainImage, ActionReadImage, ActionExplainText, ActionReadText, ActionFollowUp:
		return Action(name), nil
	}
	return ActionNone, fmt.Errorf("unknown action: %q", name)
}

// String returns the wire name of the action.
func (a Action) String() string { return string(a) }

// ActionInput carries the free-text input of a turn: the pasted text for the
// text actions, or the student's feedback for a follow-up.
type ActionInput struct {
	Text string
}

// Settings is the per-action snapshot of the user-configurable options. It is
// read once at the start of a turn and never mutated during it.
type Settings struct {
	TTSLangCode       string  `json:"ttsLangCode"`
	TranslateLangCode string  `json:"translateLangCode"`
	TranslateLangName string  `json:"translateLangName"`
	AudioSpeed        float64 `json:"audioSpeed"`
}

// DefaultSettings returns the settings of a fresh session.
func DefaultSettings() Settings {
	return Settings{
		TTSLangCode:       "en",
		TranslateLangCode: "",
		TranslateLangName: "None (Original Language)",
		AudioSpeed:        constant.AudioSpeedDefault,
	}
}

// Session holds the complete state of one interactive session. Sessions live
// in memory only and are destroyed with the process.
type Session struct {
	LogMessages        []string // most-recent-first, capped at constant.MaxLogMessages
	Processing         bool     // true only while exactly one action is in flight
	ActionTrigger      Action   // non-empty only while Processing is true
	LastUploadedImage  []byte
	LastExplanation    string // conversational context for follow-up, pre-translation
	CurrentTextToSpeak string
	CurrentAudioData   []byte
	Settings           Settings
}

// BlockedError reports a content-safety refusal from the generative model.
type BlockedError struct {
	Reason     string
	SafetyInfo string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked: %s (%s)", e.Reason, e.SafetyInfo)
}

// ErrEmptyResponse is returned when the model produced no content and reported
// no block reason.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ErrCredentialMissing is returned when no usable API key is configured. It
// blocks every action at the guard and is surfaced on the status area rather
// than retried.
var ErrCredentialMissing = errors.New("API key missing or placeholder")

// ErrImageDecode is returned when uploaded bytes are not a valid PNG or JPEG
// image.
var ErrImageDecode = errors.New("uploaded data is not a valid image")

// ErrNoVisionSupport is returned when an image action is requested but the
// configured generative backend cannot accept image payloads.
var ErrNoVisionSupport = errors.New("configured model does not support image input")

// IsErrorText reports whether a turn text carries the user-visible error
// marker. Marker texts are shown verbatim and never voiced.
func IsErrorText(text string) bool {
	return strings.Contains(text, constant.ErrorMarker)
}
