// Package scraper provides functionality to fetch conversation exports and
// pull score messages out of them
package scraper

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// senderRegex pulls the sender phone out of a "Message from ..." prefix.
var senderRegex = regexp.MustCompile(`Message from ([\d(+][\d\s().+-]*\d)`)

// FetchURL downloads the HTML content from a URL and returns it as a string.
// An optional bearer token is attached for protected conversation exports.
func FetchURL(url, token string) (string, error) {
	log.Printf("Fetching URL: %s", url)

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error building request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching URL: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("HTTP Status: %d (%s)", resp.StatusCode, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-200 status code: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	return string(body), nil
}

// SaveContentToFile saves content to a file
func SaveContentToFile(filename string, content string) error {
	return os.WriteFile(filename, []byte(content), 0644)
}

// Message is one text message recovered from a conversation export.
type Message struct {
	// Sender is the raw phone number when the export carried one.
	Sender string
	Text   string
}

// ExtractMessages pulls candidate score messages out of a conversation export.
// Reaction lines ("Loved ...", "Liked ...", "... reacted ...") are dropped, as
// are blocks that carry neither a score nor a sender prefix.
func ExtractMessages(htmlContent string) []Message {
	var messages []Message

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		log.Printf("Error parsing HTML content: %v", err)
		return messages
	}

	doc.Find("div, li").Each(func(i int, s *goquery.Selection) {
		// Only leaf blocks; container nodes repeat their children's text.
		if s.Children().Filter("div, li").Length() > 0 {
			return
		}

		text := strings.TrimSpace(s.Text())
		if text == "" || isReaction(text) {
			return
		}
		if !strings.Contains(text, "/6") && !strings.Contains(text, "Message from") {
			return
		}

		msg := Message{Text: text}
		if m := senderRegex.FindStringSubmatch(text); m != nil {
			msg.Sender = m[1]
		}
		messages = append(messages, msg)
	})

	log.Printf("Extracted %d candidate messages", len(messages))
	return messages
}

func isReaction(text string) bool {
	lower := strings.ToLower(text)
	return strings.HasPrefix(text, "Loved ") ||
		strings.HasPrefix(text, "Liked ") ||
		strings.Contains(lower, "reacted with") ||
		strings.Contains(lower, "reacted to")
}
