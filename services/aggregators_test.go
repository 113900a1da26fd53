package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPlayerStatsFirstMatch(t *testing.T) {
	playerID := uuid.New()
	now := time.Now().UTC()

	next := nextPlayerStats(nil, playerID, true, 11, 7, now)

	assert.Equal(t, playerID, next.PlayerID)
	assert.Equal(t, 1, next.MatchesPlayed)
	assert.Equal(t, 1, next.MatchesWon)
	assert.Equal(t, 0, next.MatchesLost)
	assert.Equal(t, 11, next.PointsScored)
	assert.Equal(t, 7, next.PointsAgainst)
	assert.Equal(t, 1, next.CurrentWinStreak)
	assert.Equal(t, 1, next.BestWinStreak)
	assert.Equal(t, 0, next.CurrentLossStreak)
	assert.InDelta(t, 4.0, next.AvgPointDifferential, 1e-9)
	require.NotNil(t, next.LastPlayedAt)
	assert.Equal(t, now, *next.LastPlayedAt)
}

func TestNextPlayerStatsWinStreakGrowsAndLossResetsIt(t *testing.T) {
	playerID := uuid.New()
	now := time.Now().UTC()

	stats := nextPlayerStats(nil, playerID, true, 11, 5, now)
	stats = nextPlayerStats(stats, playerID, true, 11, 9, now)
	stats = nextPlayerStats(stats, playerID, true, 15, 13, now)

	assert.Equal(t, 3, stats.CurrentWinStreak)
	assert.Equal(t, 3, stats.BestWinStreak)

	stats = nextPlayerStats(stats, playerID, false, 4, 11, now)

	assert.Equal(t, 0, stats.CurrentWinStreak)
	assert.Equal(t, 1, stats.CurrentLossStreak)
	assert.Equal(t, 3, stats.BestWinStreak, "best streak survives the loss")
	assert.Equal(t, 4, stats.MatchesPlayed)
	assert.Equal(t, 3, stats.MatchesWon)
	assert.Equal(t, 1, stats.MatchesLost)
}

func TestNextPlayerStatsDifferentialFromCumulativeTotals(t *testing.T) {
	playerID := uuid.New()
	now := time.Now().UTC()

	// +6 then -7: the average must come from totals (41-42)/2, not from
	// averaging the per-match differentials.
	stats := nextPlayerStats(nil, playerID, true, 11, 5, now)
	stats = nextPlayerStats(stats, playerID, false, 30, 37, now)

	assert.Equal(t, 41, stats.PointsScored)
	assert.Equal(t, 42, stats.PointsAgainst)
	assert.InDelta(t, -0.5, stats.AvgPointDifferential, 1e-9)
}

func TestNextTeamChemistryNewPairWin(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	next := nextTeamChemistry(nil, a, b, true, now)

	// 100% win rate * 0.7 + 2 points for one match together.
	assert.Equal(t, 72, next.ChemistryScore)
	assert.Equal(t, 1, next.MatchesTogether)
	assert.Equal(t, 1, next.WinsTogether)
	assert.Equal(t, 0, next.LossesTogether)
}

func TestNextTeamChemistryNewPairLoss(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	next := nextTeamChemistry(nil, a, b, false, now)

	// 0% win rate, only the experience bonus remains.
	assert.Equal(t, 2, next.ChemistryScore)
	assert.Equal(t, 1, next.LossesTogether)
}

func TestNextTeamChemistryScoreCapsAtHundred(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	var chem = nextTeamChemistry(nil, a, b, true, now)
	for i := 0; i < 60; i++ {
		chem = nextTeamChemistry(chem, a, b, true, now)
	}

	// 70 from win rate plus the capped 20 experience bonus is 90; the
	// overall cap can only bind for scores pushed past 100.
	assert.Equal(t, 61, chem.MatchesTogether)
	assert.Equal(t, 90, chem.ChemistryScore)
	assert.LessOrEqual(t, chem.ChemistryScore, 100)
}

func TestNextTeamChemistryCanonicalOrderIsStable(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	first := nextTeamChemistry(nil, a, b, true, now)
	second := nextTeamChemistry(first, b, a, false, now)

	assert.Equal(t, first.PlayerID, second.PlayerID)
	assert.Equal(t, first.PartnerID, second.PartnerID)
	assert.True(t, second.PlayerID.String() < second.PartnerID.String())
	assert.Equal(t, 2, second.MatchesTogether)
	assert.Equal(t, 1, second.WinsTogether)
	assert.Equal(t, 1, second.LossesTogether)
	// 50% * 0.7 + 4 = 39.
	assert.Equal(t, 39, second.ChemistryScore)
}

func TestNextTeamChemistryMixedRecord(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	var chem = nextTeamChemistry(nil, a, b, true, now)
	chem = nextTeamChemistry(chem, a, b, true, now)
	chem = nextTeamChemistry(chem, a, b, false, now)

	// 2/3 win rate: round(66.67*0.7 + 6) = round(52.67) = 53.
	assert.Equal(t, 53, chem.ChemistryScore)
}
