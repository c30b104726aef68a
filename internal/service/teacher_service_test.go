package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
	"github.com/DenisKhanov/ScreenTeacher/internal/repository"
)

type stubModel struct {
	textResp   string
	textErr    error
	imageResp  string
	imageErr   error
	textCalls  int
	imageCalls int
	lastPrompt string
}

func (m *stubModel) GenerateTextMsg(prompt, textInput string) (string, error) {
	m.textCalls++
	m.lastPrompt = prompt
	return m.textResp, m.textErr
}

func (m *stubModel) GenerateImageMsg(prompt string, image []byte) (string, error) {
	m.imageCalls++
	m.lastPrompt = prompt
	return m.imageResp, m.imageErr
}

type stubProvider struct {
	model GenerativeModel
	err   error
}

func (p *stubProvider) Model() (GenerativeModel, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.model, nil
}

func (p *stubProvider) Configured() bool { return p.err == nil }
func (p *stubProvider) KeySource() string {
	if p.err != nil {
		return "Not Set"
	}
	return "Environment Variable"
}

type stubTranslator struct {
	calls   int
	failOn  int // 1-based call number that errors; 0 means never
	chunks  []string
	targets []string
}

func (t *stubTranslator) TranslateChunk(text, targetLang string) (string, error) {
	t.calls++
	if t.failOn != 0 && t.calls >= t.failOn {
		return "", errors.New("translation backend unavailable")
	}
	t.chunks = append(t.chunks, text)
	t.targets = append(t.targets, targetLang)
	return "T:" + text, nil
}

type stubSpeech struct {
	calls int
	data  []byte
	err   error
	last  string
}

func (s *stubSpeech) Synthesize(text, langCode string) ([]byte, error) {
	s.calls++
	s.last = text
	return s.data, s.err
}

func newTestService(model *stubModel) (*TeacherService, *stubTranslator, *stubSpeech, *repository.SessionStore) {
	translator := &stubTranslator{}
	speech := &stubSpeech{data: []byte("mp3")}
	store := repository.NewSessionStore()
	svc := NewTeacherService(&stubProvider{model: model}, translator, speech, store)
	return svc, translator, speech, store
}

func TestHandleActionExplainText(t *testing.T) {
	model := &stubModel{textResp: "The **formula** is E = mc^2 (roughly)."}
	svc, translator, speech, _ := newTestService(model)

	snap := svc.HandleAction(1, models.ActionExplainText, models.ActionInput{Text: "E=mc^2"})

	if model.textCalls != 1 {
		t.Fatalf("expected 1 text call, got %d", model.textCalls)
	}
	if snap.Processing {
		t.Error("expected processing flag cleared after the turn")
	}
	for _, forbidden := range []string{"*", "=", "(", ")"} {
		if strings.Contains(snap.CurrentTextToSpeak, forbidden) {
			t.Errorf("expected %q stripped from spoken text %q", forbidden, snap.CurrentTextToSpeak)
		}
	}
	if snap.LastExplanation == "" {
		t.Error("expected explanation context to be set")
	}
	if len(snap.CurrentAudioData) == 0 {
		t.Error("expected audio data for clean text")
	}
	if speech.calls != 1 {
		t.Errorf("expected 1 speech call, got %d", speech.calls)
	}
	if translator.calls != 0 {
		t.Errorf("expected no translation calls with no target selected, got %d", translator.calls)
	}
}

func TestHandleActionFollowUpWithoutContext(t *testing.T) {
	model := &stubModel{textResp: "irrelevant"}
	svc, _, speech, store := newTestService(model)

	snap := svc.HandleAction(1, models.ActionFollowUp, models.ActionInput{Text: "why?"})

	if model.textCalls != 0 {
		t.Errorf("expected no AI call without prior explanation, got %d", model.textCalls)
	}
	if speech.calls != 0 {
		t.Errorf("expected no speech call, got %d", speech.calls)
	}
	if snap.Processing {
		t.Error("expected processing to stay false")
	}
	if snap.CurrentTextToSpeak != "" {
		t.Errorf("expected no result text, got %q", snap.CurrentTextToSpeak)
	}
	if got := store.Snapshot(1).LastExplanation; got != "" {
		t.Errorf("expected explanation to stay empty, got %q", got)
	}
}

func TestHandleActionFollowUpUsesContext(t *testing.T) {
	model := &stubModel{textResp: "Because mass converts to energy."}
	svc, _, _, store := newTestService(model)
	store.SetExplanation(1, "Energy equals mass times speed of light squared.")

	snap := svc.HandleAction(1, models.ActionFollowUp, models.ActionInput{Text: "why?"})

	if model.textCalls != 1 {
		t.Fatalf("expected 1 AI call, got %d", model.textCalls)
	}
	if !strings.Contains(model.lastPrompt, "Energy equals mass") {
		t.Errorf("expected previous explanation embedded in prompt, got %q", model.lastPrompt)
	}
	if !strings.Contains(model.lastPrompt, "why?") {
		t.Errorf("expected follow-up question embedded in prompt, got %q", model.lastPrompt)
	}
	if snap.LastExplanation != "Because mass converts to energy." {
		t.Errorf("expected context replaced by new answer, got %q", snap.LastExplanation)
	}
}

func TestFollowUpPromptFormatsCleanly(t *testing.T) {
	model := &stubModel{textResp: "An answer."}
	svc, _, _, store := newTestService(model)
	store.SetExplanation(1, "previous explanation")

	svc.HandleAction(1, models.ActionFollowUp, models.ActionInput{Text: "clarify please"})

	if strings.Contains(model.lastPrompt, "%!") {
		t.Errorf("prompt carries a formatting artifact: %q", model.lastPrompt)
	}
	if !strings.Contains(model.lastPrompt, "'percent' not %,") {
		t.Errorf("expected the symbol rule intact in prompt, got %q", model.lastPrompt)
	}
}

func TestHandleActionBlockedResponse(t *testing.T) {
	model := &stubModel{textErr: &models.BlockedError{Reason: "SAFETY", SafetyInfo: "HARASSMENT: HIGH"}}
	svc, _, speech, store := newTestService(model)
	store.SetExplanation(1, "previous answer")

	snap := svc.HandleAction(1, models.ActionExplainText, models.ActionInput{Text: "something"})

	if !strings.Contains(snap.CurrentTextToSpeak, "SAFETY") {
		t.Errorf("expected block reason in result text, got %q", snap.CurrentTextToSpeak)
	}
	if !models.IsErrorText(snap.CurrentTextToSpeak) {
		t.Errorf("expected error-marker text, got %q", snap.CurrentTextToSpeak)
	}
	if len(snap.CurrentAudioData) != 0 {
		t.Error("expected no audio for an error turn")
	}
	if speech.calls != 0 {
		t.Errorf("expected no speech call, got %d", speech.calls)
	}
	if snap.LastExplanation != "previous answer" {
		t.Errorf("expected previous context preserved after a block, got %q", snap.LastExplanation)
	}
}

func TestHandleActionEmptyResponse(t *testing.T) {
	model := &stubModel{textErr: models.ErrEmptyResponse}
	svc, _, _, _ := newTestService(model)

	snap := svc.HandleAction(1, models.ActionExplainText, models.ActionInput{Text: "something"})

	if !strings.Contains(snap.CurrentTextToSpeak, "empty response") {
		t.Errorf("expected empty-response text, got %q", snap.CurrentTextToSpeak)
	}
	if len(snap.CurrentAudioData) != 0 {
		t.Error("expected no audio")
	}
}

func TestHandleActionNotConfigured(t *testing.T) {
	translator := &stubTranslator{}
	speech := &stubSpeech{data: []byte("mp3")}
	store := repository.NewSessionStore()
	svc := NewTeacherService(&stubProvider{err: models.ErrCredentialMissing}, translator, speech, store)

	snap := svc.HandleAction(1, models.ActionExplainText, models.ActionInput{Text: "something"})

	if !models.IsErrorText(snap.CurrentTextToSpeak) {
		t.Errorf("expected configuration error text, got %q", snap.CurrentTextToSpeak)
	}
	if snap.Processing {
		t.Error("expected processing cleared after configuration failure")
	}
	if speech.calls != 0 {
		t.Errorf("expected no speech call, got %d", speech.calls)
	}
}

func TestHandleActionRejectsConcurrentTrigger(t *testing.T) {
	model := &stubModel{textResp: "ignored"}
	svc, _, _, store := newTestService(model)

	if !store.BeginAction(1, models.ActionExplainText) {
		t.Fatal("setup: BeginAction should succeed on a fresh session")
	}
	snap := svc.HandleAction(1, models.ActionExplainText, models.ActionInput{Text: "again"})

	if model.textCalls != 0 {
		t.Errorf("expected no AI call while another action is in flight, got %d", model.textCalls)
	}
	if !snap.Processing {
		t.Error("expected the in-flight processing flag untouched")
	}
	if snap.CurrentTextToSpeak != "" {
		t.Errorf("expected no result text, got %q", snap.CurrentTextToSpeak)
	}
	store.FinishAction(1)
}

func TestHandleActionReadTextBypassesModel(t *testing.T) {
	model := &stubModel{textResp: "should not be used"}
	svc, _, _, store := newTestService(model)
	store.SetExplanation(1, "stale context")

	snap := svc.HandleAction(1, models.ActionReadText, models.ActionInput{Text: "  Read   this   aloud  "})

	if model.textCalls != 0 || model.imageCalls != 0 {
		t.Errorf("expected no AI calls for read text, got text=%d image=%d", model.textCalls, model.imageCalls)
	}
	if snap.CurrentTextToSpeak != "Read this aloud" {
		t.Errorf("expected whitespace collapsed verbatim text, got %q", snap.CurrentTextToSpeak)
	}
	if snap.LastExplanation != "" {
		t.Errorf("expected read action to clear follow-up context, got %q", snap.LastExplanation)
	}
}

func TestHandleActionReadImageClearsContext(t *testing.T) {
	model := &stubModel{imageResp: "Extracted *text* from image"}
	svc, _, _, store := newTestService(model)
	store.SetImage(1, []byte("fake image bytes"))
	store.SetExplanation(1, "stale context")

	snap := svc.HandleAction(1, models.ActionReadImage, models.ActionInput{})

	if model.imageCalls != 1 {
		t.Fatalf("expected 1 image call, got %d", model.imageCalls)
	}
	if snap.LastExplanation != "" {
		t.Errorf("expected read action to clear follow-up context, got %q", snap.LastExplanation)
	}
	// Read actions keep symbols, only whitespace is normalized.
	if snap.CurrentTextToSpeak != "Extracted *text* from image" {
		t.Errorf("expected verbatim extracted text, got %q", snap.CurrentTextToSpeak)
	}
}

func TestHandleActionImageWithoutUpload(t *testing.T) {
	model := &stubModel{imageResp: "unused"}
	svc, _, _, _ := newTestService(model)

	snap := svc.HandleAction(1, models.ActionExplainImage, models.ActionInput{})

	if model.imageCalls != 0 {
		t.Errorf("expected no AI call without an uploaded image, got %d", model.imageCalls)
	}
	if snap.Processing {
		t.Error("expected processing to stay false")
	}
}

func TestHandleActionUnknownAction(t *testing.T) {
	model := &stubModel{textResp: "unused"}
	svc, _, _, _ := newTestService(model)

	snap := svc.HandleAction(1, models.Action("bogus"), models.ActionInput{Text: "x"})

	if model.textCalls != 0 {
		t.Errorf("expected no AI call for unknown action, got %d", model.textCalls)
	}
	if snap.Processing {
		t.Error("expected session untouched")
	}
}

func TestHandleActionNoVisionSupport(t *testing.T) {
	model := &stubModel{imageErr: models.ErrNoVisionSupport}
	svc, _, _, store := newTestService(model)
	store.SetImage(1, []byte("fake image bytes"))

	snap := svc.HandleAction(1, models.ActionExplainImage, models.ActionInput{})

	if !strings.Contains(snap.CurrentTextToSpeak, "cannot analyze images") {
		t.Errorf("expected vision degradation text, got %q", snap.CurrentTextToSpeak)
	}
}

func TestHandleActionAudioFailureKeepsText(t *testing.T) {
	model := &stubModel{textResp: "A clean explanation."}
	svc, _, speech, _ := newTestService(model)
	speech.err = errors.New("tts backend down")
	speech.data = nil

	snap := svc.HandleAction(1, models.ActionExplainText, models.ActionInput{Text: "input"})

	if !strings.HasPrefix(snap.CurrentTextToSpeak, "A clean explanation.") {
		t.Errorf("expected the explanation text kept, got %q", snap.CurrentTextToSpeak)
	}
	if !strings.Contains(snap.CurrentTextToSpeak, constant.AudioFailureNote) {
		t.Errorf("expected audio failure note appended, got %q", snap.CurrentTextToSpeak)
	}
	if len(snap.CurrentAudioData) != 0 {
		t.Error("expected no audio data after synthesis failure")
	}
}

func TestTranslateIfNeededPassthrough(t *testing.T) {
	model := &stubModel{}
	svc, translator, _, _ := newTestService(model)

	got := svc.translateIfNeeded(1, "hello", "", "None (Original Language)")
	if got != "hello" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if translator.calls != 0 {
		t.Errorf("expected zero translation calls, got %d", translator.calls)
	}
}

func TestTranslateIfNeededEnglishSentinel(t *testing.T) {
	model := &stubModel{}
	svc, translator, _, _ := newTestService(model)

	got := svc.translateIfNeeded(1, "bonjour le monde", "en", "English")
	if got != "bonjour le monde" {
		t.Errorf("expected the English target to pass text through untouched, got %q", got)
	}
	if translator.calls != 0 {
		t.Errorf("expected zero translation calls for the English target, got %d", translator.calls)
	}
}

func TestTranslateIfNeededEmptyText(t *testing.T) {
	model := &stubModel{}
	svc, translator, _, _ := newTestService(model)

	if got := svc.translateIfNeeded(1, "", "te", "Telugu"); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if translator.calls != 0 {
		t.Errorf("expected zero translation calls for empty text, got %d", translator.calls)
	}
}

func TestTranslateIfNeededChunksLongText(t *testing.T) {
	model := &stubModel{}
	svc, translator, _, _ := newTestService(model)

	text := strings.Repeat("a", constant.TranslateChunkLimit+1)
	got := svc.translateIfNeeded(1, text, "te", "Telugu")

	if translator.calls != 2 {
		t.Fatalf("expected 2 chunked calls, got %d", translator.calls)
	}
	if len([]rune(translator.chunks[0])) != constant.TranslateChunkLimit {
		t.Errorf("expected first chunk of %d runes, got %d", constant.TranslateChunkLimit, len([]rune(translator.chunks[0])))
	}
	if translator.chunks[1] != "a" {
		t.Errorf("expected trailing single-rune chunk, got %q", translator.chunks[1])
	}
	want := "T:" + translator.chunks[0] + " T:a"
	if got != want {
		t.Errorf("expected joined translated chunks, got %q", got)
	}
}

func TestTranslateIfNeededFailureReturnsOriginal(t *testing.T) {
	model := &stubModel{}
	svc, translator, _, _ := newTestService(model)
	translator.failOn = 2

	text := strings.Repeat("b", constant.TranslateChunkLimit+10)
	got := svc.translateIfNeeded(1, text, "hi", "Hindi")

	if got != text {
		t.Error("expected the original text after a mid-stream translation failure")
	}
	if translator.calls != 2 {
		t.Errorf("expected translation abandoned at the failing call, got %d calls", translator.calls)
	}
}

func TestSynthesizeEmptyTextSkipsCall(t *testing.T) {
	model := &stubModel{}
	svc, _, speech, _ := newTestService(model)

	if got := svc.synthesize(1, "", "en"); got != nil {
		t.Errorf("expected nil audio for empty text, got %d bytes", len(got))
	}
	if speech.calls != 0 {
		t.Errorf("expected no speech call, got %d", speech.calls)
	}
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	model := &stubModel{}
	svc, _, _, store := newTestService(model)

	err := svc.UploadImage(1, []byte("definitely not an image"))
	if !errors.Is(err, models.ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode, got %v", err)
	}
	if len(store.Snapshot(1).LastUploadedImage) != 0 {
		t.Error("expected rejected upload not to be stored")
	}
}

func TestUploadImageAcceptsPNG(t *testing.T) {
	model := &stubModel{}
	svc, _, _, store := newTestService(model)

	if err := svc.UploadImage(1, tinyPNG()); err != nil {
		t.Fatalf("expected valid PNG accepted, got %v", err)
	}
	if len(store.Snapshot(1).LastUploadedImage) == 0 {
		t.Error("expected the upload stored in the session")
	}
}

// tinyPNG returns a minimal 1x1 PNG.
func tinyPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}
}
