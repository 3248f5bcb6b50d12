// Package pairkey imposes a canonical ordering on otherwise-unordered
// player pairs and team matchups, so that aggregation code stores exactly
// one key per logical pairing regardless of input order.
package pairkey

import (
	"sort"
	"strings"
)

// NormalizePair returns the two player IDs ordered lexicographically.
// NormalizePair(a, b) and NormalizePair(b, a) always return the same result.
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// PairKey builds a single map/storage key for an unordered pair.
func PairKey(a, b string) string {
	lo, hi := NormalizePair(a, b)
	return lo + ":" + hi
}

// NormalizeTeam returns a copy of the team's player IDs in sorted order.
func NormalizeTeam(team []string) []string {
	out := make([]string, len(team))
	copy(out, team)
	sort.Strings(out)
	return out
}

// TeamKey joins a team's sorted IDs into a comparable string.
func TeamKey(team []string) string {
	return strings.Join(NormalizeTeam(team), ":")
}

// NormalizeMatchup sorts each team internally, then orders the two teams by
// their concatenated sorted-ID strings. The boolean reports whether the
// teams were swapped, so callers can map a winner back onto team1/team2.
func NormalizeMatchup(teamA, teamB []string) (team1, team2 []string, swapped bool) {
	a := NormalizeTeam(teamA)
	b := NormalizeTeam(teamB)
	if strings.Join(a, ":") > strings.Join(b, ":") {
		return b, a, true
	}
	return a, b, false
}

// MatchupKey builds a single storage key for an unordered matchup of two
// unordered teams.
func MatchupKey(teamA, teamB []string) string {
	t1, t2, _ := NormalizeMatchup(teamA, teamB)
	return strings.Join(t1, ":") + "|" + strings.Join(t2, ":")
}
