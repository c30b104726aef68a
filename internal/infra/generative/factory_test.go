package generative

import (
	"errors"
	"testing"

	"github.com/DenisKhanov/ScreenTeacher/internal/models"
)

func TestModelFactoryUnknownBackend(t *testing.T) {
	t.Parallel()

	if _, err := ModelFactory("claude", "key", "model", 0, 1.0); err == nil {
		t.Error("expected error for unregistered backend name")
	}
}

func TestProviderMissingCredential(t *testing.T) {
	t.Parallel()

	p := NewProvider("gemini", "", "Not Set", "gemini-2.0-flash")
	if p.Configured() {
		t.Error("expected provider without a key to be unconfigured")
	}
	if _, err := p.Model(); !errors.Is(err, models.ErrCredentialMissing) {
		t.Errorf("expected ErrCredentialMissing, got %v", err)
	}
}

func TestProviderRemembersFailedKey(t *testing.T) {
	t.Parallel()

	// An unregistered backend makes every build attempt fail deterministically.
	p := NewProvider("bogus", "key-1", "Environment Variable", "model")

	_, first := p.Model()
	if first == nil {
		t.Fatal("expected build failure for unregistered backend")
	}
	_, second := p.Model()
	if !errors.Is(second, first) && second.Error() != first.Error() {
		t.Errorf("expected the remembered failure returned, got %v", second)
	}
	if p.Configured() {
		t.Error("expected provider unconfigured while the failing key is in place")
	}
}

func TestProviderSetAPIKeyClearsFailure(t *testing.T) {
	t.Parallel()

	p := NewProvider("bogus", "key-1", "Secrets File", "model")
	if _, err := p.Model(); err == nil {
		t.Fatal("expected build failure")
	}

	p.SetAPIKey("key-2")
	if !p.Configured() {
		t.Error("expected a fresh key to clear the remembered failure")
	}

	p.SetAPIKey("")
	if p.Configured() {
		t.Error("expected clearing the key to unconfigure the provider")
	}
}

func TestProviderKeySource(t *testing.T) {
	t.Parallel()

	p := NewProvider("gemini", "key", "Secrets File", "model")
	if got := p.KeySource(); got != "Secrets File" {
		t.Errorf("expected KeySource passthrough, got %q", got)
	}
}
