// Package constant holds the prompts, language tables and service limits shared
// by the Screen Teacher services and frontends.
package constant

import "time"

const (
	// APIKeyPlaceholder is the compiled-in fallback for the Google API key.
	// It is rejected at configuration time if left unchanged.
	APIKeyPlaceholder = "YOUR_API_KEY_HERE"

	// ErrorMarker prefixes every user-visible error text produced by a turn.
	// Downstream steps (context update, speech synthesis) are skipped when the
	// turn text carries this marker.
	ErrorMarker = "Error:"

	// NoContentMessage is shown when a turn produced no text at all.
	NoContentMessage = "(No content was generated or extracted)"

	// AudioFailureNote is appended to the turn text when speech synthesis failed.
	AudioFailureNote = "\n\n(Error generating audio for this text)"

	// TranslateChunkLimit is the largest text chunk (in characters) sent to the
	// translation service in one request.
	TranslateChunkLimit = 4500

	// TranslateChunkPause separates consecutive chunk requests.
	TranslateChunkPause = 200 * time.Millisecond

	// SpeechChunkLimit is the largest text fragment (in characters) accepted by
	// the speech endpoint per request.
	SpeechChunkLimit = 200

	// GenerateTimeout bounds a single generative model request.
	GenerateTimeout = 120 * time.Second

	// MaxLogMessages caps the per-session status log.
	MaxLogMessages = 30

	// AudioSpeedMin, AudioSpeedMax and AudioSpeedDefault bound the playback
	// speed hint. The speed is never baked into the audio bytes.
	AudioSpeedMin     = 0.5
	AudioSpeedMax     = 2.0
	AudioSpeedDefault = 1.0
)

// ExplainPrompt instructs the model to explain the supplied content in a form
// suitable for direct text-to-speech conversion.
const ExplainPrompt = `
You are a helpful teacher explaining concepts verbally. Your response will be directly converted to text-to-speech.

Analyze the provided content (image or text) and explain it clearly and concisely.

**Crucial Formatting Rules for TTS:**
1.  **Speak Naturally:** Use plain, conversational language ONLY.
2.  **No Markdown/Special Chars:** Absolutely NO markdown (*, **, ~, ` + "`" + `, #, etc.).
3.  **Spell Out Symbols:** Write 'plus' not +, 'equals' not =, 'percent' not %, 'degrees' not °, 'multiplied by' not *, 'divided by' not /.
4.  **Numbers:** Write 'one hundred twenty three' or '123', but ensure surrounding text makes it speakable (e.g., '100 percent').
5.  **No Grouping Symbols:** Avoid parentheses (), brackets [], braces {}. Rephrase sentences if necessary.
6.  **Simple Sentences:** Break down complex ideas.
7.  **Abbreviations:** Spell out acronyms or abbreviations the first time (e.g., 'National Aeronautics and Space Administration, NASA').
8.  **Clarity First:** Ensure the final text flows well when read aloud.

Explain the core concepts or information present.
`

// ReadImagePrompt instructs the model to extract text from a screenshot
// verbatim, without commentary.
const ReadImagePrompt = `
Examine this screenshot carefully. Identify and extract ONLY the most prominent or most recent text content.

*   If it's a chat, extract ONLY the latest message or turn.
*   If it's an article or document, extract the main body text you see.
*   If specific text is clearly highlighted or seems to be the focus, extract ONLY that highlighted text.

**CRITICAL:** Return ONLY the extracted text. Do NOT add any commentary, descriptions, introductions, or formatting like quotes or labels. Just the raw text found. If no text is clear, return nothing.
`

// FollowUpPrompt is a fmt format string filled with the previous explanation
// and the student's feedback. Literal percent signs in the rule text are
// escaped so the verbs stay the only directives.
const FollowUpPrompt = `
You are a helpful teacher explaining concepts verbally. Your response will be directly converted to text-to-speech.

The student was previously shown an explanation:
"%s"

The student responded with:
"%s"

Address the student's feedback or question and provide a revised or clarified explanation based on their input.

**Crucial Formatting Rules for TTS:**
1.  **Speak Naturally:** Use plain, conversational language ONLY.
2.  **No Markdown/Special Chars:** Absolutely NO markdown (*, **, ~, ` + "`" + `, #, etc.).
3.  **Spell Out Symbols:** Write 'plus' not +, 'equals' not =, 'percent' not %%, 'degrees' not °, 'multiplied by' not *, 'divided by' not /.
4.  **Numbers:** Write 'one hundred twenty three' or '123', but ensure surrounding text makes it speakable (e.g., '100 percent').
5.  **No Grouping Symbols:** Avoid parentheses (), brackets [], braces {}. Rephrase sentences if necessary.
6.  **Simple Sentences:** Break down complex ideas.
7.  **Abbreviations:** Spell out acronyms or abbreviations the first time (e.g., 'National Aeronautics and Space Administration, NASA').
8.  **Clarity First:** Ensure the final text flows well when read aloud.
`

// TTSLanguageNames lists the selectable speech languages in display order.
var TTSLanguageNames = []string{
	"English (US)",
	"English (UK)",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Japanese",
	"Telugu",
	"Hindi",
}

// TTSLanguages maps a display name to the speech service language code.
var TTSLanguages = map[string]string{
	"English (US)": "en",
	"English (UK)": "en-gb",
	"Spanish":      "es",
	"French":       "fr",
	"German":       "de",
	"Italian":      "it",
	"Japanese":     "ja",
	"Telugu":       "te",
	"Hindi":        "hi",
}

// TranslationTargetNames lists the selectable translation targets in display
// order. The first entry disables translation.
var TranslationTargetNames = []string{
	"None (Original Language)",
	"Telugu",
	"Hindi",
	"English",
	"Spanish",
	"French",
	"German",
}

// TTSLanguageValid reports whether code is one of the supported speech
// languages.
func TTSLanguageValid(code string) bool {
	for _, c := range TTSLanguages {
		if c == code {
			return true
		}
	}
	return false
}

// TranslationTargetByCode resolves a translation language code back to its
// display name. The empty code resolves to the no-translation entry.
func TranslationTargetByCode(code string) (string, bool) {
	for name, c := range TranslationTargets {
		if c == code {
			return name, true
		}
	}
	return "", false
}

// TranslationTargets maps a display name to the translation service language
// code. An empty code means no translation.
var TranslationTargets = map[string]string{
	"None (Original Language)": "",
	"Telugu":                   "te",
	"Hindi":                    "hi",
	"English":                  "en",
	"Spanish":                  "es",
	"French":                   "fr",
	"German":                   "de",
}
