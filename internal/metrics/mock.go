package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	gamesRecorded        int
	leaderboardsComputed int
	recalcRuns           int
	recalcDurations      []float64
	skippedGames         int
	slackNotifSent       int
	slackNotifFailed     int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		recalcDurations: make([]float64, 0),
	}
}

func (m *Mock) IncGamesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesRecorded++
}

func (m *Mock) IncLeaderboardsComputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardsComputed++
}

func (m *Mock) IncRecalcRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recalcRuns++
}

func (m *Mock) ObserveRecalcDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recalcDurations = append(m.recalcDurations, duration)
}

func (m *Mock) AddSkippedGames(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skippedGames += count
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// GamesRecorded returns the number of times IncGamesRecorded was called.
func (m *Mock) GamesRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesRecorded
}

// LeaderboardsComputed returns the number of times IncLeaderboardsComputed was called.
func (m *Mock) LeaderboardsComputed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardsComputed
}

// RecalcRuns returns the number of times IncRecalcRuns was called.
func (m *Mock) RecalcRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recalcRuns
}

// SkippedGames returns the accumulated skipped-game count.
func (m *Mock) SkippedGames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skippedGames
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
