package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

func TestSnapshotCreatesSessionWithDefaults(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	snap := store.Snapshot(7)

	if len(snap.LogMessages) != 1 || !strings.Contains(snap.LogMessages[0], "Welcome") {
		t.Errorf("expected a single welcome log entry, got %v", snap.LogMessages)
	}
	if snap.Settings != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", snap.Settings)
	}
	if snap.Processing {
		t.Error("expected a fresh session not to be processing")
	}
}

func TestLogNewestFirstAndCapped(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	for i := 0; i < constant.MaxLogMessages+10; i++ {
		store.Log(7, fmt.Sprintf("entry %d", i))
	}

	snap := store.Snapshot(7)
	if len(snap.LogMessages) != constant.MaxLogMessages {
		t.Fatalf("expected log capped at %d, got %d", constant.MaxLogMessages, len(snap.LogMessages))
	}
	newest := fmt.Sprintf("entry %d", constant.MaxLogMessages+9)
	if !strings.Contains(snap.LogMessages[0], newest) {
		t.Errorf("expected newest entry first, got %q", snap.LogMessages[0])
	}
}

func TestBeginActionGuard(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	if !store.BeginAction(7, models.ActionExplainText) {
		t.Fatal("expected first BeginAction to succeed")
	}
	if store.BeginAction(7, models.ActionReadText) {
		t.Error("expected BeginAction to fail while processing")
	}

	snap := store.Snapshot(7)
	if snap.ActionTrigger != models.ActionExplainText {
		t.Errorf("expected the rejected trigger not to overwrite the pending action, got %q", snap.ActionTrigger)
	}

	store.FinishAction(7)
	snap = store.Snapshot(7)
	if snap.Processing || snap.ActionTrigger != models.ActionNone {
		t.Errorf("expected FinishAction to clear flags, got processing=%v trigger=%q", snap.Processing, snap.ActionTrigger)
	}
	if !store.BeginAction(7, models.ActionReadText) {
		t.Error("expected BeginAction to succeed after FinishAction")
	}
}

func TestBeginActionClearsPreviousTurnOutput(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	store.SetResult(7, "old text", []byte("old audio"))

	if !store.BeginAction(7, models.ActionExplainText) {
		t.Fatal("expected BeginAction to succeed")
	}
	snap := store.Snapshot(7)
	if snap.CurrentTextToSpeak != "" || len(snap.CurrentAudioData) != 0 {
		t.Errorf("expected previous output cleared, got text=%q audio=%d bytes", snap.CurrentTextToSpeak, len(snap.CurrentAudioData))
	}
}

func TestSnapshotIsolation(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	store.SetImage(7, []byte{1, 2, 3})
	snap := store.Snapshot(7)

	snap.LastUploadedImage[0] = 99
	snap.LogMessages[0] = "mutated"

	fresh := store.Snapshot(7)
	if fresh.LastUploadedImage[0] != 1 {
		t.Error("expected snapshot mutation not to leak into the store")
	}
	if fresh.LogMessages[0] == "mutated" {
		t.Error("expected log mutation not to leak into the store")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	store.SetExplanation(1, "first chat context")
	store.SetExplanation(2, "second chat context")

	if got := store.Snapshot(1).LastExplanation; got != "first chat context" {
		t.Errorf("unexpected context for chat 1: %q", got)
	}
	if got := store.Snapshot(2).LastExplanation; got != "second chat context" {
		t.Errorf("unexpected context for chat 2: %q", got)
	}
}

func TestUpdateSettingsValidatesSpeed(t *testing.T) {
	t.Parallel()

	store := NewSessionStore()
	settings := models.DefaultSettings()

	settings.AudioSpeed = constant.AudioSpeedMax + 0.5
	if err := store.UpdateSettings(7, settings); err == nil {
		t.Error("expected out-of-range speed rejected")
	}
	if got := store.Settings(7).AudioSpeed; got != constant.AudioSpeedDefault {
		t.Errorf("expected settings unchanged after rejection, got speed %.2f", got)
	}

	settings.AudioSpeed = 1.5
	settings.TranslateLangCode = "te"
	settings.TranslateLangName = "Telugu"
	if err := store.UpdateSettings(7, settings); err != nil {
		t.Fatalf("expected valid settings accepted, got %v", err)
	}
	if got := store.Settings(7); got != settings {
		t.Errorf("expected settings applied, got %+v", got)
	}
}
