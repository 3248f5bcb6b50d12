package pairkey_test

import (
	"testing"

	"github.com/crosscourt/shuttletrack/internal/pairkey"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	lo, hi := pairkey.NormalizePair("p2", "p1")
	assert.Equal(t, "p1", lo)
	assert.Equal(t, "p2", hi)

	lo2, hi2 := pairkey.NormalizePair("p1", "p2")
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)
}

func TestPairKeySymmetry(t *testing.T) {
	assert.Equal(t, pairkey.PairKey("a", "b"), pairkey.PairKey("b", "a"))
	assert.Equal(t, "a:b", pairkey.PairKey("b", "a"))
}

func TestNormalizeTeamDoesNotMutateInput(t *testing.T) {
	team := []string{"z", "a"}
	sorted := pairkey.NormalizeTeam(team)
	assert.Equal(t, []string{"a", "z"}, sorted)
	assert.Equal(t, []string{"z", "a"}, team)
}

func TestNormalizeMatchup(t *testing.T) {
	t1, t2, swapped := pairkey.NormalizeMatchup([]string{"d", "c"}, []string{"b", "a"})
	assert.Equal(t, []string{"a", "b"}, t1)
	assert.Equal(t, []string{"c", "d"}, t2)
	assert.True(t, swapped)

	t1, t2, swapped = pairkey.NormalizeMatchup([]string{"a", "b"}, []string{"c", "d"})
	assert.Equal(t, []string{"a", "b"}, t1)
	assert.Equal(t, []string{"c", "d"}, t2)
	assert.False(t, swapped)
}

func TestMatchupKeySymmetry(t *testing.T) {
	k1 := pairkey.MatchupKey([]string{"a", "b"}, []string{"c", "d"})
	k2 := pairkey.MatchupKey([]string{"d", "c"}, []string{"b", "a"})
	assert.Equal(t, k1, k2)
	assert.Equal(t, "a:b|c:d", k1)
}

func TestSinglesMatchupKey(t *testing.T) {
	k1 := pairkey.MatchupKey([]string{"p1"}, []string{"p2"})
	k2 := pairkey.MatchupKey([]string{"p2"}, []string{"p1"})
	assert.Equal(t, k1, k2)
}
