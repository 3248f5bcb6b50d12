package club

import (
	"sync"

	"github.com/crosscourt/shuttletrack/internal/schedule"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use. Unset Func fields return zero values.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateGroupFunc          func(name string) (*Group, error)
	GetGroupFunc             func(groupID string) (*Group, error)
	ListGroupsFunc           func() ([]Group, error)
	DeleteGroupFunc          func(groupID string) error
	CreateGroupPlayerFunc    func(groupID, name string) (*GroupPlayer, error)
	GetGroupPlayerFunc       func(groupID, groupPlayerID string) (*GroupPlayer, error)
	ListGroupPlayersFunc     func(groupID string) ([]GroupPlayer, error)
	ApplyGameToRatingFunc    func(groupPlayerID string, ratingDelta float64, won bool) error
	CreateSessionFunc        func(groupID, name, mode string, courtCost, shuttleCost, playedAt int64) (*Session, error)
	GetSessionFunc           func(sessionID string) (*Session, error)
	ListSessionsFunc         func(groupID string) ([]Session, error)
	SessionCostFunc          func(sessionID string) (*SessionCost, error)
	AddSessionPlayerFunc     func(sessionID, name string, groupPlayerID *string) (*SessionPlayer, error)
	ListSessionPlayersFunc   func(sessionIDs []string) ([]SessionPlayer, error)
	LinkGroupPlayerFunc      func(sessionPlayerID, groupPlayerID string) error
	CreateGamesFunc          func(sessionID string, scheduled []schedule.ScheduledGame) ([]Game, error)
	GetGameFunc              func(gameID string) (*Game, error)
	RecordResultFunc         func(gameID, winningTeam string, teamAScore, teamBScore *int) (*Game, error)
	ListCompletedGamesFunc   func(sessionIDs []string) ([]Game, int, error)
	ListAllGamesFunc         func(sessionIDs []string) ([]Game, int, error)
	UpsertPartnerStatsFunc   func(ps PartnerStats) error
	UpsertPairingMatchupFunc func(pm PairingMatchup) error
	ClearPartnerStatsFunc    func(groupID string) error
	ClearPairingMatchupsFunc func(groupID string) error
	ListPartnerStatsFunc     func(groupID string) ([]PartnerStats, error)
	ListPairingMatchupsFunc  func(groupID string) ([]PairingMatchup, error)

	// Call records
	CreateGamesCalls          [][]schedule.ScheduledGame
	RecordResultCalls         []string
	ApplyGameToRatingCalls    []string
	UpsertPartnerStatsCalls   []PartnerStats
	UpsertPairingMatchupCalls []PairingMatchup
	ClearPartnerStatsCalls    []string
	ClearPairingMatchupsCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateGroup(name string) (*Group, error) {
	if m.CreateGroupFunc != nil {
		return m.CreateGroupFunc(name)
	}
	return nil, nil
}

func (m *MockStore) GetGroup(groupID string) (*Group, error) {
	if m.GetGroupFunc != nil {
		return m.GetGroupFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) ListGroups() ([]Group, error) {
	if m.ListGroupsFunc != nil {
		return m.ListGroupsFunc()
	}
	return nil, nil
}

func (m *MockStore) DeleteGroup(groupID string) error {
	if m.DeleteGroupFunc != nil {
		return m.DeleteGroupFunc(groupID)
	}
	return nil
}

func (m *MockStore) CreateGroupPlayer(groupID, name string) (*GroupPlayer, error) {
	if m.CreateGroupPlayerFunc != nil {
		return m.CreateGroupPlayerFunc(groupID, name)
	}
	return nil, nil
}

func (m *MockStore) GetGroupPlayer(groupID, groupPlayerID string) (*GroupPlayer, error) {
	if m.GetGroupPlayerFunc != nil {
		return m.GetGroupPlayerFunc(groupID, groupPlayerID)
	}
	return nil, nil
}

func (m *MockStore) ListGroupPlayers(groupID string) ([]GroupPlayer, error) {
	if m.ListGroupPlayersFunc != nil {
		return m.ListGroupPlayersFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) ApplyGameToRating(groupPlayerID string, ratingDelta float64, won bool) error {
	m.mu.Lock()
	m.ApplyGameToRatingCalls = append(m.ApplyGameToRatingCalls, groupPlayerID)
	m.mu.Unlock()
	if m.ApplyGameToRatingFunc != nil {
		return m.ApplyGameToRatingFunc(groupPlayerID, ratingDelta, won)
	}
	return nil
}

func (m *MockStore) CreateSession(groupID, name, mode string, courtCost, shuttleCost, playedAt int64) (*Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(groupID, name, mode, courtCost, shuttleCost, playedAt)
	}
	return nil, nil
}

func (m *MockStore) GetSession(sessionID string) (*Session, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) ListSessions(groupID string) ([]Session, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) SessionCost(sessionID string) (*SessionCost, error) {
	if m.SessionCostFunc != nil {
		return m.SessionCostFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) AddSessionPlayer(sessionID, name string, groupPlayerID *string) (*SessionPlayer, error) {
	if m.AddSessionPlayerFunc != nil {
		return m.AddSessionPlayerFunc(sessionID, name, groupPlayerID)
	}
	return nil, nil
}

func (m *MockStore) ListSessionPlayers(sessionIDs []string) ([]SessionPlayer, error) {
	if m.ListSessionPlayersFunc != nil {
		return m.ListSessionPlayersFunc(sessionIDs)
	}
	return nil, nil
}

func (m *MockStore) LinkGroupPlayer(sessionPlayerID, groupPlayerID string) error {
	if m.LinkGroupPlayerFunc != nil {
		return m.LinkGroupPlayerFunc(sessionPlayerID, groupPlayerID)
	}
	return nil
}

func (m *MockStore) CreateGames(sessionID string, scheduled []schedule.ScheduledGame) ([]Game, error) {
	m.mu.Lock()
	m.CreateGamesCalls = append(m.CreateGamesCalls, scheduled)
	m.mu.Unlock()
	if m.CreateGamesFunc != nil {
		return m.CreateGamesFunc(sessionID, scheduled)
	}
	return nil, nil
}

func (m *MockStore) GetGame(gameID string) (*Game, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(gameID)
	}
	return nil, nil
}

func (m *MockStore) RecordResult(gameID, winningTeam string, teamAScore, teamBScore *int) (*Game, error) {
	m.mu.Lock()
	m.RecordResultCalls = append(m.RecordResultCalls, gameID)
	m.mu.Unlock()
	if m.RecordResultFunc != nil {
		return m.RecordResultFunc(gameID, winningTeam, teamAScore, teamBScore)
	}
	return nil, nil
}

func (m *MockStore) ListCompletedGames(sessionIDs []string) ([]Game, int, error) {
	if m.ListCompletedGamesFunc != nil {
		return m.ListCompletedGamesFunc(sessionIDs)
	}
	return nil, 0, nil
}

func (m *MockStore) ListAllGames(sessionIDs []string) ([]Game, int, error) {
	if m.ListAllGamesFunc != nil {
		return m.ListAllGamesFunc(sessionIDs)
	}
	return nil, 0, nil
}

func (m *MockStore) UpsertPartnerStats(ps PartnerStats) error {
	m.mu.Lock()
	m.UpsertPartnerStatsCalls = append(m.UpsertPartnerStatsCalls, ps)
	m.mu.Unlock()
	if m.UpsertPartnerStatsFunc != nil {
		return m.UpsertPartnerStatsFunc(ps)
	}
	return nil
}

func (m *MockStore) UpsertPairingMatchup(pm PairingMatchup) error {
	m.mu.Lock()
	m.UpsertPairingMatchupCalls = append(m.UpsertPairingMatchupCalls, pm)
	m.mu.Unlock()
	if m.UpsertPairingMatchupFunc != nil {
		return m.UpsertPairingMatchupFunc(pm)
	}
	return nil
}

func (m *MockStore) ClearPartnerStats(groupID string) error {
	m.mu.Lock()
	m.ClearPartnerStatsCalls = append(m.ClearPartnerStatsCalls, groupID)
	m.mu.Unlock()
	if m.ClearPartnerStatsFunc != nil {
		return m.ClearPartnerStatsFunc(groupID)
	}
	return nil
}

func (m *MockStore) ClearPairingMatchups(groupID string) error {
	m.mu.Lock()
	m.ClearPairingMatchupsCalls = append(m.ClearPairingMatchupsCalls, groupID)
	m.mu.Unlock()
	if m.ClearPairingMatchupsFunc != nil {
		return m.ClearPairingMatchupsFunc(groupID)
	}
	return nil
}

func (m *MockStore) ListPartnerStats(groupID string) ([]PartnerStats, error) {
	if m.ListPartnerStatsFunc != nil {
		return m.ListPartnerStatsFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) ListPairingMatchups(groupID string) ([]PairingMatchup, error) {
	if m.ListPairingMatchupsFunc != nil {
		return m.ListPairingMatchupsFunc(groupID)
	}
	return nil, nil
}
