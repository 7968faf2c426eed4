// Package utils provides utility functions for the wordle-league-tracker
package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/myusername/wordle-league-tracker/pkg/models"
)

// DisplayWeeklyStandings prints a league's standings for a weekly window.
func DisplayWeeklyStandings(leagueName string, window models.WeeklyWindow, standings []models.WeeklyStanding) {
	fmt.Printf("\n=========== %s - WEEK OF %s ===========\n", strings.ToUpper(leagueName), window.Start.Format("Jan 2"))
	fmt.Printf("%-20s | %-6s | %-5s | %-6s | %-6s\n", "Player", "Total", "Games", "Failed", "Winner")
	fmt.Printf("%-20s | %-6s | %-5s | %-6s | %-6s\n",
		strings.Repeat("-", 20), strings.Repeat("-", 6), strings.Repeat("-", 5),
		strings.Repeat("-", 6), strings.Repeat("-", 6))

	for _, s := range standings {
		total := "-"
		if s.Eligible {
			total = fmt.Sprintf("%d", s.Total)
		}
		winner := ""
		if s.IsWinner {
			winner = "WIN"
		}
		fmt.Printf("%-20s | %-6s | %5d | %6d | %-6s\n",
			s.Player, total, s.GameCount, s.FailedCount, winner)
	}

	fmt.Println(strings.Repeat("=", 55))
}

// DisplaySeasonWinners prints the season tally for a league.
func DisplaySeasonWinners(leagueName string, winners []models.SeasonWinner) {
	fmt.Printf("\n=========== %s - SEASON ===========\n", strings.ToUpper(leagueName))
	if len(winners) == 0 {
		fmt.Println("No weekly winners yet")
		return
	}
	for _, w := range winners {
		fmt.Printf("%-20s | %2d wins | %s\n", w.Player, w.Wins, strings.Join(w.Weeks, ", "))
	}
	fmt.Println(strings.Repeat("=", 55))
}

// SaveStandingsToCSV saves a weekly standings table to a CSV file.
func SaveStandingsToCSV(window models.WeeklyWindow, standings []models.WeeklyStanding, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "Week,Player,Total,Games,Failed,Winner\n")
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range standings {
		total := ""
		if s.Eligible {
			total = fmt.Sprintf("%d", s.Total)
		}
		_, err = fmt.Fprintf(f, "%s,%s,%s,%d,%d,%t\n",
			window.Start.Format("2006-01-02"), s.Player, total, s.GameCount, s.FailedCount, s.IsWinner)
		if err != nil {
			return fmt.Errorf("failed to write standings row: %w", err)
		}
	}

	return nil
}
