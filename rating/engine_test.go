package rating

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singles(rating int) Side {
	return Side{Player1: Player{ID: uuid.New(), Rating: rating}}
}

func doubles(rating1, rating2 int) Side {
	p2 := Player{ID: uuid.New(), Rating: rating2}
	return Side{Player1: Player{ID: uuid.New(), Rating: rating1}, Player2: &p2}
}

func TestCalculateNewRatings_EvenCloseGame(t *testing.T) {
	// 1200 vs 1200, 11-9: expectation 0.5, close-game bonus 1.2,
	// 32*0.5*1.2 = 19.2 -> 19 each way.
	update := CalculateNewRatings(Outcome{
		Team1:      singles(1200),
		Team2:      singles(1200),
		Winner:     Team1,
		Team1Score: 11,
		Team2Score: 9,
	})

	require.Len(t, update.Team1, 1)
	require.Len(t, update.Team2, 1)
	assert.Equal(t, 1219, update.Team1[0].NewRating)
	assert.Equal(t, 19, update.Team1[0].Change)
	assert.Equal(t, 1181, update.Team2[0].NewRating)
	assert.Equal(t, -19, update.Team2[0].Change)

	assert.InDelta(t, 0.5, update.Metadata.ExpectedWinProbability, 1e-9)
	assert.Equal(t, 1.2, update.Metadata.ScoreDifferentialBonus)
	assert.False(t, update.Metadata.IsUpset)
}

func TestCalculateNewRatings_DominantUpsetHitsMaxClamp(t *testing.T) {
	// 300-point gap, lower side wins 11-3: dominant 1.5 and upset 1.5
	// push the raw change past 50, so it clamps to the maximum.
	update := CalculateNewRatings(Outcome{
		Team1:      singles(1500),
		Team2:      singles(1200),
		Winner:     Team2,
		Team1Score: 3,
		Team2Score: 11,
	})

	assert.Equal(t, 50, update.Team2[0].Change)
	assert.Equal(t, 1250, update.Team2[0].NewRating)
	assert.Equal(t, -50, update.Team1[0].Change)
	assert.Equal(t, 1450, update.Team1[0].NewRating)

	assert.True(t, update.Metadata.IsUpset)
	assert.Equal(t, 1.5, update.Metadata.UpsetBonus)
	assert.Equal(t, 1.5, update.Metadata.ScoreDifferentialBonus)
}

func TestCalculateNewRatings_FavoriteWinHitsMinClamp(t *testing.T) {
	// A heavy favorite winning a normal-margin game earns well under 10
	// points raw, so the change clamps up to the minimum.
	update := CalculateNewRatings(Outcome{
		Team1:      singles(1500),
		Team2:      singles(1200),
		Winner:     Team1,
		Team1Score: 11,
		Team2Score: 6,
	})

	assert.Equal(t, 10, update.Team1[0].Change)
	assert.Equal(t, -10, update.Team2[0].Change)
	assert.False(t, update.Metadata.IsUpset)
}

func TestCalculateNewRatings_DoublesMoveTogether(t *testing.T) {
	update := CalculateNewRatings(Outcome{
		Team1:      doubles(1300, 1100),
		Team2:      doubles(1250, 1150),
		Winner:     Team2,
		Team1Score: 7,
		Team2Score: 11,
	})

	require.Len(t, update.Team1, 2)
	require.Len(t, update.Team2, 2)

	// Both partners on a side move by the same signed amount.
	assert.Equal(t, update.Team1[0].Change, update.Team1[1].Change)
	assert.Equal(t, update.Team2[0].Change, update.Team2[1].Change)
	assert.Equal(t, -update.Team1[0].Change, update.Team2[0].Change)

	// Team ratings average: both sides sit at 1200, expectation is even.
	assert.InDelta(t, 0.5, update.Metadata.ExpectedWinProbability, 1e-9)
}

func TestCalculateNewRatings_ZeroSum(t *testing.T) {
	cases := []struct {
		name   string
		match  Outcome
	}{
		{"even singles", Outcome{Team1: singles(1200), Team2: singles(1200), Winner: Team1, Team1Score: 11, Team2Score: 5}},
		{"upset singles", Outcome{Team1: singles(1000), Team2: singles(1450), Winner: Team1, Team1Score: 11, Team2Score: 9}},
		{"mixed doubles", Outcome{Team1: doubles(1600, 1400), Team2: doubles(1100, 1300), Winner: Team2, Team1Score: 2, Team2Score: 11}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			update := CalculateNewRatings(tc.match)
			for _, pu := range append(update.Team1, update.Team2...) {
				change := pu.Change
				if change < 0 {
					change = -change
				}
				assert.GreaterOrEqual(t, change, MinRatingChange)
				assert.LessOrEqual(t, change, MaxRatingChange)
			}
			assert.Equal(t, update.Team1[0].Change, -update.Team2[0].Change)
		})
	}
}

func TestExpectedWinProbability_Monotone(t *testing.T) {
	prev := 0.0
	for ratingA := 800; ratingA <= 2000; ratingA += 50 {
		p := ExpectedWinProbability(float64(ratingA), 1400)
		assert.GreaterOrEqual(t, p, prev, "expectation must not decrease as rating grows")
		prev = p
	}
}

func TestScoreDifferentialBonus(t *testing.T) {
	cases := []struct {
		scoreA, scoreB int
		want           float64
	}{
		{11, 3, 1.5},  // dominant
		{3, 11, 1.5},  // dominant, order independent
		{11, 9, 1.2},  // close
		{11, 10, 1.2}, // close
		{11, 6, 1.0},  // normal
		{11, 4, 1.0},  // gap of 7 is still normal
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ScoreDifferentialBonus(tc.scoreA, tc.scoreB))
	}
}

func TestCalculateNewRatings_NoUpsetBelowThreshold(t *testing.T) {
	// 199-point gap is below the upset threshold even when the lower
	// side wins.
	update := CalculateNewRatings(Outcome{
		Team1:      singles(1399),
		Team2:      singles(1200),
		Winner:     Team2,
		Team1Score: 5,
		Team2Score: 11,
	})
	assert.False(t, update.Metadata.IsUpset)
	assert.Equal(t, 1.0, update.Metadata.UpsetBonus)
}
