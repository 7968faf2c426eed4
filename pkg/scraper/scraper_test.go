package scraper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleExport = `<!DOCTYPE html>
<html><body>
<div class="conversation">
  <div class="message">Message from (858) 735-9353: Wordle 1,506 3/6</div>
  <div class="message">Loved "Wordle 1,506 3/6"</div>
  <div class="message">Message from (760) 334-1190: Wordle 1,506 4/6</div>
  <div class="message">Joanna reacted with an emoji</div>
  <div class="note">lunch at noon?</div>
</div>
</body></html>`

func TestFetchURL(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(sampleExport))
	}))
	defer ts.Close()

	content, err := FetchURL(ts.URL, "secret")
	if err != nil {
		t.Fatalf("FetchURL error: %v", err)
	}
	if !strings.Contains(content, "Wordle 1,506") {
		t.Error("fetched content missing expected message text")
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestFetchURL_NoToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("request should carry no Authorization header")
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	if _, err := FetchURL(ts.URL, ""); err != nil {
		t.Fatalf("FetchURL error: %v", err)
	}
}

func TestFetchURL_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	if _, err := FetchURL(ts.URL, ""); err == nil {
		t.Fatal("non-200 response must be an error")
	}
}

func TestExtractMessages(t *testing.T) {
	messages := ExtractMessages(sampleExport)

	if len(messages) != 2 {
		t.Fatalf("messages len = %d, want 2 (reactions and chatter dropped): %+v", len(messages), messages)
	}
	if messages[0].Sender != "(858) 735-9353" {
		t.Errorf("first sender = %q, want (858) 735-9353", messages[0].Sender)
	}
	if !strings.Contains(messages[0].Text, "Wordle 1,506 3/6") {
		t.Errorf("first text = %q, want the score message", messages[0].Text)
	}
	if messages[1].Sender != "(760) 334-1190" {
		t.Errorf("second sender = %q, want (760) 334-1190", messages[1].Sender)
	}
}

func TestExtractMessages_Empty(t *testing.T) {
	if got := ExtractMessages("<html><body><p>hi</p></body></html>"); len(got) != 0 {
		t.Errorf("messages = %+v, want none", got)
	}
}

func TestSaveContentToFile(t *testing.T) {
	path := t.TempDir() + "/export.html"
	if err := SaveContentToFile(path, sampleExport); err != nil {
		t.Fatalf("SaveContentToFile error: %v", err)
	}
}
