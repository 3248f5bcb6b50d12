// Package schedule generates balanced round-robin game schedules for a
// session roster. Generation is pure and deterministic: the same roster and
// settings always produce the same schedule.
package schedule

import (
	"github.com/crosscourt/shuttletrack/internal/pairkey"
)

// Mode selects between 1v1 and 2v2 play.
type Mode string

const (
	ModeSingles Mode = "singles"
	ModeDoubles Mode = "doubles"
)

// ScheduledGame is an unplayed pairing of two teams. Callers turn these into
// persisted games with sequential game numbers and a null winner.
type ScheduledGame struct {
	TeamA []string `json:"teamA"`
	TeamB []string `json:"teamB"`
}

// maxDoublesGames caps the six-player doubles schedule when no explicit
// limit is given.
const maxDoublesGames = 15

// SupportsPlayerCount reports whether a roster of the given size can be
// scheduled in the given mode: 2 or more for singles, 4 to 6 for doubles.
func SupportsPlayerCount(mode Mode, players int) bool {
	if mode == ModeSingles {
		return players >= 2
	}
	return players >= 4 && players <= 6
}

// Generate produces the round-robin schedule for the given player IDs.
// maxGames <= 0 means uncapped. Rosters below the minimum for the mode
// (2 for singles, 4 for doubles) yield an empty schedule. Doubles supports
// at most 6 players; session creation enforces that bound.
func Generate(playerIDs []string, maxGames int, mode Mode) []ScheduledGame {
	if mode == ModeSingles {
		return generateSingles(playerIDs, maxGames)
	}
	return generateDoubles(playerIDs, maxGames)
}

// generateSingles emits every unique 1v1 pairing once, in index order.
func generateSingles(ids []string, maxGames int) []ScheduledGame {
	if len(ids) < 2 {
		return []ScheduledGame{}
	}

	var games []ScheduledGame
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			games = append(games, ScheduledGame{
				TeamA: []string{ids[i]},
				TeamB: []string{ids[j]},
			})
		}
	}

	if maxGames > 0 && maxGames < len(games) {
		games = games[:maxGames]
	}
	return games
}

func generateDoubles(ids []string, maxGames int) []ScheduledGame {
	switch {
	case len(ids) < 4:
		return []ScheduledGame{}
	case len(ids) == 4:
		return doublesForFour(ids, maxGames)
	case len(ids) == 5:
		return doublesForFive(ids, maxGames)
	case len(ids) == 6:
		return doublesForSix(ids, maxGames)
	default:
		return []ScheduledGame{}
	}
}

// partitionsOfFour returns the 3 ways to split 4 players into two teams of
// two. Each player partners every other player exactly once.
func partitionsOfFour(ids []string) []ScheduledGame {
	return []ScheduledGame{
		{TeamA: []string{ids[0], ids[1]}, TeamB: []string{ids[2], ids[3]}},
		{TeamA: []string{ids[0], ids[2]}, TeamB: []string{ids[1], ids[3]}},
		{TeamA: []string{ids[0], ids[3]}, TeamB: []string{ids[1], ids[2]}},
	}
}

// doublesForFour cycles the 3 canonical partitions. A cap larger than 3
// repeats the same matchups rather than inventing new ones.
func doublesForFour(ids []string, maxGames int) []ScheduledGame {
	base := partitionsOfFour(ids)
	if maxGames <= 0 || maxGames == len(base) {
		return base
	}
	if maxGames < len(base) {
		return base[:maxGames]
	}

	games := make([]ScheduledGame, 0, maxGames)
	for len(games) < maxGames {
		games = append(games, base[len(games)%len(base)])
	}
	return games
}

// doublesForFive rotates a sit-out through all 5 players, playing the 3
// partitions of the remaining 4 each rotation.
func doublesForFive(ids []string, maxGames int) []ScheduledGame {
	var games []ScheduledGame
	for sitOut := 0; sitOut < len(ids); sitOut++ {
		active := make([]string, 0, 4)
		for i, id := range ids {
			if i != sitOut {
				active = append(active, id)
			}
		}
		games = append(games, partitionsOfFour(active)...)
	}

	if maxGames > 0 && maxGames < len(games) {
		games = games[:maxGames]
	}
	return games
}

// doublesForSix builds the deduplicated list of all disjoint 2v2 games and
// greedily selects games while no partner pair repeats more than twice.
// If the greedy pass cannot fill the target, the plain prefix of the
// candidate list is used instead, trading partner variety for a full card.
func doublesForSix(ids []string, maxGames int) []ScheduledGame {
	candidates := allDoublesGames(ids)

	target := maxDoublesGames
	if maxGames > 0 && maxGames < target {
		target = maxGames
	}

	partnerCount := make(map[string]int)
	var selected []ScheduledGame
	for _, g := range candidates {
		if len(selected) >= target {
			break
		}
		keyA := pairkey.PairKey(g.TeamA[0], g.TeamA[1])
		keyB := pairkey.PairKey(g.TeamB[0], g.TeamB[1])
		if partnerCount[keyA] >= 2 || partnerCount[keyB] >= 2 {
			continue
		}
		partnerCount[keyA]++
		partnerCount[keyB]++
		selected = append(selected, g)
	}

	if len(selected) < target {
		if target > len(candidates) {
			target = len(candidates)
		}
		return candidates[:target]
	}
	return selected
}

// allDoublesGames enumerates every distinct game of two disjoint pairs,
// deduplicated so {A,B} vs {C,D} appears once regardless of side order.
func allDoublesGames(ids []string) []ScheduledGame {
	seen := make(map[string]bool)
	var games []ScheduledGame

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			rest := make([]string, 0, len(ids)-2)
			for k, id := range ids {
				if k != i && k != j {
					rest = append(rest, id)
				}
			}
			for k := 0; k < len(rest); k++ {
				for l := k + 1; l < len(rest); l++ {
					teamA := []string{ids[i], ids[j]}
					teamB := []string{rest[k], rest[l]}
					key := pairkey.MatchupKey(teamA, teamB)
					if seen[key] {
						continue
					}
					seen[key] = true
					games = append(games, ScheduledGame{TeamA: teamA, TeamB: teamB})
				}
			}
		}
	}
	return games
}
