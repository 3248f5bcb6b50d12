// Package elo implements standard ELO rating updates for singles and
// doubles games. A team's rating is the mean of its members' ratings.
package elo

import "math"

const (
	// InitialRating is assigned to every new group player.
	InitialRating = 1200.0
	// KFactor controls rating volatility per game.
	KFactor = 32.0
)

// Expected returns the expected score of a player/team rated `rating`
// against an opponent rated `opponent`.
func Expected(rating, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-rating)/400.0))
}

// TeamRating averages the ratings of a team's members. An empty team rates
// at the initial rating so a malformed roster cannot skew opponents.
func TeamRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return InitialRating
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// Update returns each side's per-player rating delta for a finished game.
// Every member of a team receives the same delta, computed from the team
// averages. aWon reports whether side A took the game.
func Update(teamARatings, teamBRatings []float64, aWon bool) (deltaA, deltaB float64) {
	ratingA := TeamRating(teamARatings)
	ratingB := TeamRating(teamBRatings)

	scoreA := 0.0
	if aWon {
		scoreA = 1.0
	}

	deltaA = KFactor * (scoreA - Expected(ratingA, ratingB))
	deltaB = -deltaA
	return deltaA, deltaB
}
