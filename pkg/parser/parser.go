// Package parser provides functionality to parse wordle scores from message
// text and archived recap files
package parser

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/myusername/wordle-league-tracker/pkg/models"
)

// scoreRegex matches score messages like "Wordle 1,506 3/6" or
// "Wordle 1506 #1506 X/6". Puzzle numbers may carry comma grouping.
var scoreRegex = regexp.MustCompile(`Wordle ([\d,]+)(?: #([\d,]+)?)? ([1-6X])/6`)

// backfillRegex matches recap lines of the form "Brent: Wordle 1,506 3/6".
var backfillRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z .'-]*):\s*(Wordle [\d,]+.* [1-6X]/6)`)

// emojiRunes are the grid squares a share message may contain.
const emojiRunes = "\U0001F7E9\U0001F7E8⬜⬛"

// ParsedScore is one score extracted from a share message.
type ParsedScore struct {
	PuzzleNumber int
	Score        int
	EmojiPattern string
}

// ParseScoreMessage extracts the puzzle number, score and emoji grid from a
// share message. Returns nil with no error when the text is not a score
// message at all.
func ParseScoreMessage(text string) (*ParsedScore, error) {
	if !strings.Contains(text, "/6") {
		return nil, nil
	}
	match := scoreRegex.FindStringSubmatch(text)
	if match == nil {
		return nil, nil
	}

	number, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid puzzle number %q: %w", match[1], err)
	}
	score, err := models.ParseScore(match[3])
	if err != nil {
		return nil, fmt.Errorf("puzzle %d: %w", number, err)
	}

	return &ParsedScore{
		PuzzleNumber: number,
		Score:        score,
		EmojiPattern: extractEmojiPattern(text),
	}, nil
}

// extractEmojiPattern collects the grid lines of a share message, joined by
// newlines. Lines mixing squares with other text are skipped.
func extractEmojiPattern(text string) string {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isEmojiRow(line) {
			continue
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func isEmojiRow(line string) bool {
	for _, r := range line {
		if !strings.ContainsRune(emojiRunes, r) {
			return false
		}
	}
	return len(line) > 0
}

// NormalizePhone strips formatting from a phone number, leaving digits only.
// US country codes are preserved as stored in the mappings.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PlayerForPhone resolves a sender phone number to a player name for a league.
// Mappings are keyed by league ID, then by cleaned phone number. Numbers are
// matched with and without a leading country code.
func PlayerForPhone(phone string, leagueID int, mappings map[int]map[string]string) (string, bool) {
	league := mappings[leagueID]
	if league == nil {
		return "", false
	}

	cleaned := NormalizePhone(phone)
	if name, ok := league[cleaned]; ok {
		return name, true
	}
	if len(cleaned) == 10 {
		if name, ok := league["1"+cleaned]; ok {
			return name, true
		}
	}
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "1") {
		if name, ok := league[cleaned[1:]]; ok {
			return name, true
		}
	}
	return "", false
}

// ReadPDFText reads a PDF file and returns its text content
func ReadPDFText(pdfPath string) (string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	plainText, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("error extracting text from PDF: %w", err)
	}

	bytes, err := io.ReadAll(plainText)
	if err != nil {
		return "", fmt.Errorf("error reading plain text from PDF: %w", err)
	}

	return string(bytes), nil
}

// BackfillScore is a historical score recovered from an archived recap.
type BackfillScore struct {
	Player string
	Score  ParsedScore
}

// ExtractScoresFromText parses archived recap text for lines attributing a
// score to a player, e.g. "Brent: Wordle 1,506 3/6". Lines that do not match
// are skipped so mixed recap documents can be fed in whole.
func ExtractScoresFromText(text string) []BackfillScore {
	var scores []BackfillScore

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		match := backfillRegex.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		parsed, err := ParseScoreMessage(match[2])
		if err != nil {
			log.Printf("Skipping recap line %q: %v", line, err)
			continue
		}
		if parsed == nil {
			continue
		}

		scores = append(scores, BackfillScore{
			Player: strings.TrimSpace(match[1]),
			Score:  *parsed,
		})
		log.Printf("Recovered score from recap: %s, puzzle %d, score %d",
			match[1], parsed.PuzzleNumber, parsed.Score)
	}

	log.Printf("Extracted %d scores from recap text", len(scores))
	return scores
}
