// Package repository provides the in-memory session store. Sessions are keyed
// by chat ID, guarded by a read-write mutex, and never persisted: the store
// dies with the process.
package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

// SessionStore holds one Session per chat ID.
type SessionStore struct {
	sessions map[int64]*models.Session // In-memory map of chat ID to session state
	mu       sync.RWMutex              // Mutex for thread-safe access
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*models.Session),
	}
}

// session returns the live session for chatID, creating it on first use.
// Callers must hold the write lock.
func (s *SessionStore) session(chatID int64) *models.Session {
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &models.Session{
			LogMessages: []string{timestamped("Welcome! Ready for input.")},
			Settings:    models.DefaultSettings(),
		}
		s.sessions[chatID] = sess
		logrus.Infof("Created session for chat %d", chatID)
	}
	return sess
}

// Snapshot returns a copy of the session state. Slice fields are copied so a
// later mutation cannot leak into a rendered snapshot.
func (s *SessionStore) Snapshot(chatID int64) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	snap := *sess
	snap.LogMessages = append([]string(nil), sess.LogMessages...)
	snap.LastUploadedImage = append([]byte(nil), sess.LastUploadedImage...)
	snap.CurrentAudioData = append([]byte(nil), sess.CurrentAudioData...)
	return snap
}

// Log prepends a timestamped status line, keeping the newest
// constant.MaxLogMessages entries.
func (s *SessionStore) Log(chatID int64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	sess.LogMessages = append([]string{timestamped(message)}, sess.LogMessages...)
	if len(sess.LogMessages) > constant.MaxLogMessages {
		sess.LogMessages = sess.LogMessages[:constant.MaxLogMessages]
	}
}

// BeginAction marks the session as processing the given action and clears the
// previous turn's output. Returns false (leaving the session untouched) when
// another action is already in flight.
func (s *SessionStore) BeginAction(chatID int64, action models.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	if sess.Processing {
		return false
	}
	sess.Processing = true
	sess.ActionTrigger = action
	sess.CurrentAudioData = nil
	sess.CurrentTextToSpeak = ""
	return true
}

// FinishAction clears the processing flag and the pending action. Safe to
// call unconditionally; it is the guaranteed-cleanup step of every turn.
func (s *SessionStore) FinishAction(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	sess.Processing = false
	sess.ActionTrigger = models.ActionNone
}

// SetImage replaces the session's uploaded screenshot.
func (s *SessionStore) SetImage(chatID int64, img []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(chatID).LastUploadedImage = img
}

// SetExplanation replaces the conversational context used by follow-up turns.
func (s *SessionStore) SetExplanation(chatID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(chatID).LastExplanation = text
}

// SetResult stores the turn's displayed text and synthesized audio (nil when
// no audio is available).
func (s *SessionStore) SetResult(chatID int64, text string, audio []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	sess.CurrentTextToSpeak = text
	sess.CurrentAudioData = audio
}

// Settings returns the session's current settings snapshot.
func (s *SessionStore) Settings(chatID int64) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session(chatID).Settings
}

// UpdateSettings validates and applies new settings. The audio speed must lie
// within the supported playback range.
func (s *SessionStore) UpdateSettings(chatID int64, settings models.Settings) error {
	if settings.AudioSpeed < constant.AudioSpeedMin || settings.AudioSpeed > constant.AudioSpeedMax {
		err := fmt.Errorf("audio speed %.2f out of range [%.1f, %.1f]",
			settings.AudioSpeed, constant.AudioSpeedMin, constant.AudioSpeedMax)
		logrus.WithError(err).Error("Rejected settings update")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(chatID).Settings = settings
	return nil
}

func timestamped(message string) string {
	return fmt.Sprintf("%s: %s", time.Now().Format("15:04:05"), message)
}
