package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/crobots/internal/core/behavior"
)

func builtinFactory() ([]Entry, error) {
	var entries []Entry
	for _, name := range behavior.Names() {
		c, err := behavior.New(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Controller: c})
	}
	return entries, nil
}

func TestRoundSeed(t *testing.T) {
	assert.Equal(t, RoundSeed(1, 1), RoundSeed(1, 1))
	assert.NotEqual(t, RoundSeed(1, 1), RoundSeed(1, 2))
	assert.NotEqual(t, RoundSeed(1, 1), RoundSeed(2, 1))
}

func TestTournamentRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 11
	cfg.MaxTicks = 2000

	results, summary, err := NewTournament(cfg, 3, nil, nil).Run(context.Background(), 6, builtinFactory)
	require.NoError(t, err)
	require.Len(t, results, 6)

	wins := 0
	for i, r := range results {
		assert.Equal(t, i+1, r.Round)
		assert.Equal(t, RoundSeed(11, i+1), r.Seed)
		assert.LessOrEqual(t, r.Cycles, uint64(2000))
	}
	for _, n := range summary.Wins {
		wins += n
	}
	assert.Equal(t, 6, summary.Rounds)
	assert.Equal(t, 6, wins+summary.Draws+summary.Limits)
	assert.Greater(t, summary.MeanCycles, 0.0)

	again, _, err := NewTournament(cfg, 1, nil, nil).Run(context.Background(), 6, builtinFactory)
	require.NoError(t, err)
	for i := range results {
		assert.Equal(t, results[i].Winner, again[i].Winner)
		assert.Equal(t, results[i].Cycles, again[i].Cycles)
	}
}

func TestTournamentErrors(t *testing.T) {
	_, _, err := NewTournament(DefaultConfig(), 1, nil, nil).Run(context.Background(), 0, builtinFactory)
	assert.ErrorIs(t, err, ErrNoRounds)

	boom := errors.New("boom")
	_, _, err = NewTournament(DefaultConfig(), 1, nil, nil).Run(context.Background(), 2, func() ([]Entry, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, _, err = NewTournament(DefaultConfig(), 1, nil, nil).Run(context.Background(), 2, func() ([]Entry, error) {
		return []Entry{{Name: "Solo"}}, nil
	})
	assert.ErrorIs(t, err, ErrNotEnoughRobots)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]RoundResult{
		{Round: 1, Result: Result{Outcome: OutcomeWon, Winner: "rook", Cycles: 100}},
		{Round: 2, Result: Result{Outcome: OutcomeWon, Winner: "rook", Cycles: 200}},
		{Round: 3, Result: Result{Outcome: OutcomeDraw, Cycles: 300}},
		{Round: 4, Result: Result{Outcome: OutcomeLimit, Cycles: 400}},
	})

	assert.Equal(t, 4, s.Rounds)
	assert.Equal(t, map[string]int{"rook": 2}, s.Wins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.Limits)
	assert.InDelta(t, 250.0, s.MeanCycles, 1e-9)
	assert.InDelta(t, 129.0994, s.StdDevCycles, 1e-3)

	empty := Summarize(nil)
	assert.Equal(t, 0.0, empty.MeanCycles)
}
