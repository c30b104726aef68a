// Package web provides dependency injection and lifecycle management for the
// Screen Teacher web frontend.
package web

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/api"
	teacherHand "github.com/DenisKhanov/ScreenTeacher/internal/api/http"
	"github.com/DenisKhanov/ScreenTeacher/internal/config"
	"github.com/DenisKhanov/ScreenTeacher/internal/infra/generative"
	"github.com/DenisKhanov/ScreenTeacher/internal/repository"
	teacherServ "github.com/DenisKhanov/ScreenTeacher/internal/service"
)

// ServiceProvider manages the dependency injection for the web frontend.
type ServiceProvider struct {
	cfg *config.Config

	sessionStore   *repository.SessionStore
	modelProvider  *generative.Provider
	translator     teacherServ.Translator
	speech         teacherServ.SpeechSynthesizer
	teacherService *teacherServ.TeacherService
	handler        *teacherHand.Handler

	sessionOnce   sync.Once
	providerOnce  sync.Once
	translateOnce sync.Once
	speechOnce    sync.Once
	serviceOnce   sync.Once
	handlerOnce   sync.Once
}

// NewServiceProvider creates a new instance of the service provider.
func NewServiceProvider(cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{cfg: cfg}
}

// SessionStore returns the in-memory session store.
func (s *ServiceProvider) SessionStore() *repository.SessionStore {
	s.sessionOnce.Do(func() {
		s.sessionStore = repository.NewSessionStore()
		logrus.Info("SessionStore initialized")
	})
	return s.sessionStore
}

// ModelProvider returns the lazy generative model provider.
func (s *ServiceProvider) ModelProvider() *generative.Provider {
	s.providerOnce.Do(func() {
		s.modelProvider = generative.NewProvider(
			s.cfg.EnvGenerativeName,
			s.cfg.GoogleAPIKey,
			s.cfg.APIKeySource,
			s.cfg.EnvGenerativeModel,
		)
		logrus.Infof("ModelProvider initialized (key source: %s)", s.cfg.APIKeySource)
	})
	return s.modelProvider
}

// TranslateService returns the translation adapter.
func (s *ServiceProvider) TranslateService() teacherServ.Translator {
	s.translateOnce.Do(func() {
		s.translator = api.NewGoogleTranslateAPI(s.cfg.EnvTranslateEndpoint)
		logrus.Info("TranslateService initialized")
	})
	return s.translator
}

// SpeechService returns the speech synthesis adapter.
func (s *ServiceProvider) SpeechService() teacherServ.SpeechSynthesizer {
	s.speechOnce.Do(func() {
		s.speech = api.NewGoogleSpeechAPI(s.cfg.EnvSpeechEndpoint)
		logrus.Info("SpeechService initialized")
	})
	return s.speech
}

// TeacherService returns the action orchestrator.
func (s *ServiceProvider) TeacherService() *teacherServ.TeacherService {
	s.serviceOnce.Do(func() {
		s.teacherService = teacherServ.NewTeacherService(
			s.ModelProvider(),
			s.TranslateService(),
			s.SpeechService(),
			s.SessionStore(),
		)
		logrus.Info("TeacherService initialized")
	})
	return s.teacherService
}

// Handler returns the web API handler.
func (s *ServiceProvider) Handler() *teacherHand.Handler {
	s.handlerOnce.Do(func() {
		s.handler = teacherHand.NewHandler(s.TeacherService())
		logrus.Info("Handler initialized")
	})
	return s.handler
}
