package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DenisKhanov/ScreenTeacher/internal/constant"
)

func TestSplitForSpeech(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "empty", text: "   ", limit: 10, want: nil},
		{name: "fits", text: "hello world", limit: 20, want: []string{"hello world"}},
		{name: "splits on words", text: "one two three four", limit: 9, want: []string{"one two", "three", "four"}},
		{name: "oversized word kept whole", text: "supercalifragilistic yes", limit: 5, want: []string{"supercalifragilistic", "yes"}},
	}
	for _, tt := range tests {
		got := splitForSpeech(tt.text, tt.limit)
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %d fragments, got %v", tt.name, len(tt.want), got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: fragment %d = %q, want %q", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSplitForSpeechRespectsLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 200)
	for _, fragment := range splitForSpeech(text, constant.SpeechChunkLimit) {
		if len(fragment) > constant.SpeechChunkLimit {
			t.Errorf("fragment exceeds limit: %d chars", len(fragment))
		}
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	t.Parallel()

	speech := NewGoogleSpeechAPI("http://unused.invalid")
	if _, err := speech.Synthesize("", "en"); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestSynthesizeConcatenatesFragments(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		q := r.URL.Query()
		if q.Get("client") != "tw-ob" || q.Get("ie") != "UTF-8" {
			t.Errorf("unexpected query parameters: %v", q)
		}
		if q.Get("tl") != "en" {
			t.Errorf("expected language en, got %q", q.Get("tl"))
		}
		w.Write([]byte("FRAME"))
	}))
	defer srv.Close()

	speech := NewGoogleSpeechAPI(srv.URL)
	text := strings.Repeat("word ", 100) // forces multiple fragments at the 200-char limit
	audio, err := speech.Synthesize(strings.TrimSpace(text), "en")
	if err != nil {
		t.Fatal(err)
	}
	if requests < 2 {
		t.Errorf("expected the text split across requests, got %d", requests)
	}
	if !bytes.Equal(audio, bytes.Repeat([]byte("FRAME"), requests)) {
		t.Errorf("expected fragment audio concatenated in order, got %d bytes", len(audio))
	}
}

func TestSynthesizeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	speech := NewGoogleSpeechAPI(srv.URL)
	if _, err := speech.Synthesize("hello", "en"); err == nil {
		t.Error("expected error on non-200 response")
	}
}
