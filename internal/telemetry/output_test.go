package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/crobots/internal/core/match"
)

var sampleResults = []match.RoundResult{
	{Round: 1, Result: match.Result{
		MatchID: "m1", Seed: 10, Outcome: match.OutcomeWon, Winner: "Rook", Cycles: 420,
		Destroyed: []string{"Sniper", "Rabbit", "Counter"},
	}},
	{Round: 2, Result: match.Result{
		MatchID: "m2", Seed: 11, Outcome: match.OutcomeDraw, Cycles: 77,
		Destroyed: []string{"Rook", "Sniper"},
	}},
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, sampleResults))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "round,match_id,seed,outcome,winner,cycles,destroyed", lines[0])
	assert.Equal(t, "1,m1,10,won,Rook,420,Sniper;Rabbit;Counter", lines[1])
	assert.Equal(t, "2,m2,11,draw,,77,Rook;Sniper", lines[2])
}

func TestWriteStandings(t *testing.T) {
	var buf bytes.Buffer
	summary := match.Summary{Rounds: 4, Wins: map[string]int{"Rook": 1, "Hunter": 2, "Counter": 1}}
	require.NoError(t, WriteStandings(&buf, summary))

	var got []WinRecord
	require.NoError(t, gocsv.UnmarshalBytes(buf.Bytes(), &got))
	assert.Equal(t, []WinRecord{
		{Robot: "Hunter", Wins: 2, Share: 0.5},
		{Robot: "Counter", Wins: 1, Share: 0.25},
		{Robot: "Rook", Wins: 1, Share: 0.25},
	}, got)
}

func TestWriteResultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, WriteResultsFile(path, sampleResults))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []RoundRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, NewRoundRecord(sampleResults[0]), got[0])
	assert.Equal(t, "", got[1].Winner)
}
