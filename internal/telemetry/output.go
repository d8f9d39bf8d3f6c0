package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/zeusync/crobots/internal/core/match"
)

// RoundRecord is one row of the tournament results file.
type RoundRecord struct {
	Round     int    `csv:"round"`
	MatchID   string `csv:"match_id"`
	Seed      uint64 `csv:"seed"`
	Outcome   string `csv:"outcome"`
	Winner    string `csv:"winner"`
	Cycles    uint64 `csv:"cycles"`
	Destroyed string `csv:"destroyed"`
}

// WinRecord is one row of the standings file.
type WinRecord struct {
	Robot string  `csv:"robot"`
	Wins  int     `csv:"wins"`
	Share float64 `csv:"share"`
}

// NewRoundRecord flattens a round result. Destroyed robots are joined with
// ';' in order of destruction.
func NewRoundRecord(r match.RoundResult) RoundRecord {
	return RoundRecord{
		Round:     r.Round,
		MatchID:   r.MatchID,
		Seed:      r.Seed,
		Outcome:   string(r.Outcome),
		Winner:    r.Winner,
		Cycles:    r.Cycles,
		Destroyed: strings.Join(r.Destroyed, ";"),
	}
}

// WriteResults writes results as CSV with a header row.
func WriteResults(w io.Writer, results []match.RoundResult) error {
	records := make([]RoundRecord, len(results))
	for i, r := range results {
		records[i] = NewRoundRecord(r)
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// WriteStandings writes one row per winning robot, most wins first. Share
// is relative to all rounds, so draws and tick limits lower it.
func WriteStandings(w io.Writer, summary match.Summary) error {
	records := make([]WinRecord, 0, len(summary.Wins))
	for robot, wins := range summary.Wins {
		share := 0.0
		if summary.Rounds > 0 {
			share = float64(wins) / float64(summary.Rounds)
		}
		records = append(records, WinRecord{Robot: robot, Wins: wins, Share: share})
	}
	slices.SortFunc(records, func(a, b WinRecord) int {
		if a.Wins != b.Wins {
			return b.Wins - a.Wins
		}
		return strings.Compare(a.Robot, b.Robot)
	})
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing standings: %w", err)
	}
	return nil
}

// WriteResultsFile creates path, including parent directories, and writes
// results to it.
func WriteResultsFile(path string, results []match.RoundResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err = WriteResults(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
