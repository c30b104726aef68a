package tbot

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
	teacherServ "github.com/DenisKhanov/ScreenTeacher/internal/service"
)

const introMessage = `Send me a screenshot and I will explain it aloud.

Commands:
/read - read the text from the last screenshot verbatim
/readtext <text> - read pasted text verbatim
/voice <code> - speech language (en, en-gb, es, fr, de, it, ja, te, hi)
/translate <code|none> - translate replies (te, hi, en, es, fr, de)
/speed <0.5-2.0> - playback speed hint
/status - credential and settings status

Plain text is explained; replying to one of my explanations asks a follow-up.`

// Bot glues Telegram updates to the action orchestrator. Each chat gets its
// own session.
type Bot struct {
	api     *tgbotapi.BotAPI
	service *teacherServ.TeacherService
	client  *http.Client // for downloading photo payloads
}

// NewBot creates a Bot on top of an authorized API client.
func NewBot(botAPI *tgbotapi.BotAPI, service *teacherServ.TeacherService) *Bot {
	return &Bot{
		api:     botAPI,
		service: service,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// HandleUpdate routes one Telegram update into the orchestrator and replies
// with the resulting turn text and audio.
func (b *Bot) HandleUpdate(update *tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	switch {
	case len(msg.Photo) > 0:
		b.handlePhoto(chatID, msg)
	case msg.IsCommand():
		b.handleCommand(chatID, msg)
	case msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.ID == b.api.Self.ID:
		b.runAction(chatID, models.ActionFollowUp, msg.Text)
	case msg.Text != "":
		b.runAction(chatID, models.ActionExplainText, msg.Text)
	}
}

// handlePhoto downloads the largest rendition of the screenshot and explains
// it, or reads it verbatim when the caption says /read.
func (b *Bot) handlePhoto(chatID int64, msg *tgbotapi.Message) {
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadFile(photo.FileID)
	if err != nil {
		logrus.WithError(err).Error("Failed to download photo")
		b.sendText(chatID, fmt.Sprintf("Could not download the screenshot: %v", err))
		return
	}
	if err = b.service.UploadImage(chatID, data); err != nil {
		b.sendText(chatID, "That file does not look like a PNG or JPEG screenshot.")
		return
	}

	action := models.ActionExplainImage
	if strings.HasPrefix(strings.TrimSpace(msg.Caption), "/read") {
		action = models.ActionReadImage
	}
	b.runAction(chatID, action, "")
}

func (b *Bot) handleCommand(chatID int64, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.sendText(chatID, introMessage)
	case "read":
		b.runAction(chatID, models.ActionReadImage, "")
	case "readtext":
		b.runAction(chatID, models.ActionReadText, args)
	case "voice":
		b.setVoice(chatID, args)
	case "translate":
		b.setTranslate(chatID, args)
	case "speed":
		b.setSpeed(chatID, args)
	case "status":
		b.sendStatus(chatID)
	default:
		b.sendText(chatID, "Unknown command. Try /help.")
	}
}

// runAction executes one turn and replies with its text, attaching the audio
// when synthesis succeeded.
func (b *Bot) runAction(chatID int64, action models.Action, text string) {
	snap := b.service.HandleAction(chatID, action, models.ActionInput{Text: text})
	if snap.CurrentTextToSpeak == "" {
		// Guard-rejected turns leave no result; report the newest log line.
		if len(snap.LogMessages) > 0 {
			b.sendText(chatID, snap.LogMessages[0])
		}
		return
	}
	b.sendText(chatID, snap.CurrentTextToSpeak)
	if len(snap.CurrentAudioData) > 0 {
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: "speech.mp3", Bytes: snap.CurrentAudioData})
		if _, err := b.api.Send(audio); err != nil {
			logrus.WithError(err).Errorf("Failed to send audio to chat %d", chatID)
		}
	}
}

func (b *Bot) setVoice(chatID int64, code string) {
	if !constant.TTSLanguageValid(code) {
		b.sendText(chatID, "Unknown voice code. Supported: en, en-gb, es, fr, de, it, ja, te, hi.")
		return
	}
	settings := b.service.Snapshot(chatID).Settings
	settings.TTSLangCode = code
	if err := b.service.UpdateSettings(chatID, settings); err != nil {
		b.sendText(chatID, fmt.Sprintf("Could not update settings: %v", err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("Voice language set to %s.", code))
}

func (b *Bot) setTranslate(chatID int64, code string) {
	if code == "none" || code == "off" {
		code = ""
	}
	name, ok := constant.TranslationTargetByCode(code)
	if !ok {
		b.sendText(chatID, "Unknown translation code. Supported: te, hi, en, es, fr, de, none.")
		return
	}
	settings := b.service.Snapshot(chatID).Settings
	settings.TranslateLangCode = code
	settings.TranslateLangName = name
	if err := b.service.UpdateSettings(chatID, settings); err != nil {
		b.sendText(chatID, fmt.Sprintf("Could not update settings: %v", err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("Translation target set to %s.", name))
}

func (b *Bot) setSpeed(chatID int64, arg string) {
	speed, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		b.sendText(chatID, "Usage: /speed 1.5")
		return
	}
	settings := b.service.Snapshot(chatID).Settings
	settings.AudioSpeed = speed
	if err = b.service.UpdateSettings(chatID, settings); err != nil {
		b.sendText(chatID, fmt.Sprintf("Speed must be between %.1f and %.1f.", constant.AudioSpeedMin, constant.AudioSpeedMax))
		return
	}
	b.sendText(chatID, fmt.Sprintf("Playback speed hint set to %.1fx. Telegram clients apply their own speed controls.", speed))
}

func (b *Bot) sendStatus(chatID int64) {
	snap := b.service.Snapshot(chatID)
	status := "API Key Not Found or Placeholder!"
	if b.service.Configured() {
		status = fmt.Sprintf("API key loaded (%s).", b.service.KeySource())
	}
	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString(fmt.Sprintf("\nVoice: %s, translate to: %s, speed: %.1fx.",
		snap.Settings.TTSLangCode, snap.Settings.TranslateLangName, snap.Settings.AudioSpeed))
	sb.WriteString("\n\nRecent log:\n")
	for i, line := range snap.LogMessages {
		if i == 5 {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logrus.WithError(err).Errorf("Failed to send message to chat %d: %s", chatID, text)
	}
}

// downloadFile fetches a Telegram file by ID.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file URL: %w", err)
	}
	res, err := b.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err = res.Body.Close(); err != nil {
			logrus.WithError(err).Errorf("Failed to close response body: %v", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}
