// Package http exposes the web frontend of Screen Teacher: JSON and multipart
// handlers that feed user actions into the orchestrator and render session
// state back to the page.
package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

// The page is single-user, so every request operates on one fixed session.
const webSessionID int64 = 0

// Service is the orchestrator surface consumed by the handlers.
type Service interface {
	HandleAction(chatID int64, action models.Action, input models.ActionInput) models.Session
	UploadImage(chatID int64, data []byte) error
	Snapshot(chatID int64) models.Session
	UpdateSettings(chatID int64, settings models.Settings) error
	Configured() bool
	KeySource() string
}

// Handler wires the orchestrator into gin routes.
type Handler struct {
	service Service
}

// NewHandler creates a Handler for the given service.
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes attaches all web API routes to the router.
func (h Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/image", h.UploadImage)
	api.POST("/action", h.TriggerAction)
	api.GET("/state", h.GetState)
	api.GET("/audio", h.GetAudio)
	api.PUT("/settings", h.UpdateSettings)
	api.GET("/languages", h.GetLanguages)
}

// stateResponse is the session state as rendered to the page. Binary blobs
// are reported by presence only; the audio bytes travel through GetAudio.
type stateResponse struct {
	Processing       bool            `json:"processing"`
	Text             string          `json:"text"`
	HasAudio         bool            `json:"hasAudio"`
	HasImage         bool            `json:"hasImage"`
	HasExplanation   bool            `json:"hasExplanation"`
	APIKeyConfigured bool            `json:"apiKeyConfigured"`
	APIKeySource     string          `json:"apiKeySource"`
	Settings         models.Settings `json:"settings"`
	Log              []string        `json:"log"`
}

func (h Handler) state(snap models.Session) stateResponse {
	return stateResponse{
		Processing:       snap.Processing,
		Text:             snap.CurrentTextToSpeak,
		HasAudio:         len(snap.CurrentAudioData) > 0,
		HasImage:         len(snap.LastUploadedImage) > 0,
		HasExplanation:   snap.LastExplanation != "",
		APIKeyConfigured: h.service.Configured(),
		APIKeySource:     h.service.KeySource(),
		Settings:         snap.Settings,
		Log:              snap.LogMessages,
	}
}

// UploadImage stores a screenshot delivered as the multipart field "image".
func (h Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	src, err := file.Open()
	if err != nil {
		logrus.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		logrus.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err = h.service.UploadImage(webSessionID, data); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrImageDecode) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.state(h.service.Snapshot(webSessionID)))
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`
	Text   string `json:"text"`
}

// TriggerAction runs one orchestrator turn. The whole turn executes
// synchronously; the response carries the post-turn state.
func (h Handler) TriggerAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, err := models.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.service.HandleAction(webSessionID, action, models.ActionInput{Text: req.Text})
	c.JSON(http.StatusOK, h.state(snap))
}

// GetState renders the current session state.
func (h Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state(h.service.Snapshot(webSessionID)))
}

// GetAudio streams the last synthesized audio. The playback speed is a hint
// carried in a header; the bytes are never re-encoded.
func (h Handler) GetAudio(c *gin.Context) {
	snap := h.service.Snapshot(webSessionID)
	if len(snap.CurrentAudioData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audio available"})
		return
	}
	c.Header("X-Playback-Speed", fmt.Sprintf("%.1f", snap.Settings.AudioSpeed))
	c.Data(http.StatusOK, "audio/mpeg", snap.CurrentAudioData)
}

type settingsRequest struct {
	TTSLanguage string  `json:"ttsLanguage"`
	TranslateTo string  `json:"translateTo"`
	AudioSpeed  float64 `json:"audioSpeed"`
}

// UpdateSettings applies new user settings, addressed by the display names of
// the language tables.
func (h Handler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttsCode, ok := constant.TTSLanguages[req.TTSLanguage]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown TTS language: %q", req.TTSLanguage)})
		return
	}
	translateCode, ok := constant.TranslationTargets[req.TranslateTo]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown translation target: %q", req.TranslateTo)})
		return
	}

	settings := models.Settings{
		TTSLangCode:       ttsCode,
		TranslateLangCode: translateCode,
		TranslateLangName: req.TranslateTo,
		AudioSpeed:        req.AudioSpeed,
	}
	if err := h.service.UpdateSettings(webSessionID, settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.state(h.service.Snapshot(webSessionID)))
}

// GetLanguages lists the selectable speech languages and translation targets
// in display order.
func (h Handler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ttsLanguages":       constant.TTSLanguageNames,
		"translationTargets": constant.TranslationTargetNames,
	})
}
