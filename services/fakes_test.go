package services

import (
	"context"
	"fmt"
	"sync"

	"match-event-service/models"
	"match-event-service/pkg/common"
)

// fakeMatchStore 测试用的内存 MatchStore
type fakeMatchStore struct {
	matches map[string]*models.Match
	applied []*models.MatchEvent
	failure error
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: make(map[string]*models.Match)}
}

func (s *fakeMatchStore) SaveMatch(ctx context.Context, match *models.Match) error {
	if s.failure != nil {
		return s.failure
	}
	copied := *match
	s.matches[match.ID] = &copied
	return nil
}

func (s *fakeMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, ok := s.matches[matchID]
	if !ok || match.Deleted {
		return nil, fmt.Errorf("match %s: %w", matchID, common.ErrNotFound)
	}
	copied := *match
	return &copied, nil
}

func (s *fakeMatchStore) DeleteMatch(ctx context.Context, matchID string) error {
	match, ok := s.matches[matchID]
	if !ok || match.Deleted {
		return fmt.Errorf("match %s: %w", matchID, common.ErrNotFound)
	}
	match.Deleted = true
	return nil
}

func (s *fakeMatchStore) ApplyEvent(ctx context.Context, match *models.Match, event *models.MatchEvent) error {
	if s.failure != nil {
		return s.failure
	}
	copied := *match
	s.matches[match.ID] = &copied
	s.applied = append(s.applied, event)
	return nil
}

func (s *fakeMatchStore) ListEvents(ctx context.Context, matchID string) ([]*models.MatchEvent, error) {
	var events []*models.MatchEvent
	for _, event := range s.applied {
		if event.MatchID == matchID {
			events = append(events, event)
		}
	}
	return events, nil
}

// fakeRosterStore 测试用的内存 RosterStore
type fakeRosterStore struct {
	players map[string]*models.TeamPlayer
	failure error
}

func newFakeRosterStore() *fakeRosterStore {
	return &fakeRosterStore{players: make(map[string]*models.TeamPlayer)}
}

func (s *fakeRosterStore) add(teamPlayerID, teamID, playerID, name string) {
	s.players[teamPlayerID] = &models.TeamPlayer{
		ID:       teamPlayerID,
		TeamID:   teamID,
		PlayerID: playerID,
		Name:     name,
		Active:   true,
	}
}

func (s *fakeRosterStore) GetTeamPlayer(ctx context.Context, teamPlayerID string) (*models.TeamPlayer, error) {
	if s.failure != nil {
		return nil, s.failure
	}
	player, ok := s.players[teamPlayerID]
	if !ok {
		return nil, fmt.Errorf("team player %s: %w", teamPlayerID, common.ErrNotFound)
	}
	return player, nil
}

func (s *fakeRosterStore) ListTeamPlayers(ctx context.Context, teamID string) ([]*models.TeamPlayer, error) {
	var players []*models.TeamPlayer
	for _, player := range s.players {
		if player.TeamID == teamID {
			players = append(players, player)
		}
	}
	return players, nil
}

func (s *fakeRosterStore) AddTeamPlayer(ctx context.Context, player *models.TeamPlayer) error {
	s.players[player.ID] = player
	return nil
}

// fakeStatsStore 测试用的内存 StatsStore。消费者在独立的 goroutine 中
// 访问它，需要加锁
type fakeStatsStore struct {
	mu         sync.Mutex
	teamStats  map[string]*models.TeamStats
	player     map[string]*models.PlayerStats
	unassigned map[string]string
	saves      int
	failure    error
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{
		teamStats:  make(map[string]*models.TeamStats),
		player:     make(map[string]*models.PlayerStats),
		unassigned: make(map[string]string),
	}
}

func teamKey(competitionID, teamID string) string {
	return competitionID + "|" + teamID
}

func playerKey(competitionID, playerID string) string {
	return competitionID + "|" + playerID
}

func (s *fakeStatsStore) FindOrCreateTeamStats(ctx context.Context, competitionID, teamID string) (*models.TeamStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}

	key := teamKey(competitionID, teamID)
	if stats, ok := s.teamStats[key]; ok {
		copied := *stats
		return &copied, nil
	}
	stats := &models.TeamStats{
		ID:            key,
		CompetitionID: competitionID,
		TeamID:        teamID,
	}
	s.teamStats[key] = stats
	copied := *stats
	return &copied, nil
}

func (s *fakeStatsStore) UpdateTeamStats(ctx context.Context, stats *models.TeamStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *stats
	s.teamStats[teamKey(stats.CompetitionID, stats.TeamID)] = &copied
	return nil
}

func (s *fakeStatsStore) FindOrCreatePlayerStats(ctx context.Context, competitionID, playerID, teamID, name string) (*models.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}

	key := playerKey(competitionID, playerID)
	if stats, ok := s.player[key]; ok {
		copied := *stats
		return &copied, nil
	}
	stats := &models.PlayerStats{
		ID:            key,
		CompetitionID: competitionID,
		PlayerID:      playerID,
		TeamID:        teamID,
		Name:          name,
	}
	s.player[key] = stats
	copied := *stats
	return &copied, nil
}

func (s *fakeStatsStore) UpdatePlayerStats(ctx context.Context, stats *models.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *stats
	s.player[playerKey(stats.CompetitionID, stats.PlayerID)] = &copied
	return nil
}

func (s *fakeStatsStore) ListTeamStats(ctx context.Context, competitionID string) ([]*models.TeamStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*models.TeamStats
	for _, stats := range s.teamStats {
		if stats.CompetitionID == competitionID {
			copied := *stats
			list = append(list, &copied)
		}
	}
	return list, nil
}

func (s *fakeStatsStore) ListPlayerStats(ctx context.Context, competitionID string) ([]*models.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*models.PlayerStats
	for _, stats := range s.player {
		if stats.CompetitionID == competitionID {
			copied := *stats
			list = append(list, &copied)
		}
	}
	return list, nil
}

func (s *fakeStatsStore) SaveUnassignedMatch(ctx context.Context, matchID, competitionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	s.saves++
	s.unassigned[matchID] = competitionID
	return nil
}

func (s *fakeStatsStore) getTeamStats(competitionID, teamID string) *models.TeamStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.teamStats[teamKey(competitionID, teamID)]
	if !ok {
		return nil
	}
	copied := *stats
	return &copied
}

func (s *fakeStatsStore) getPlayerStats(competitionID, playerID string) *models.PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.player[playerKey(competitionID, playerID)]
	if !ok {
		return nil
	}
	copied := *stats
	return &copied
}

// captureBroker 记录所有发布消息的 MessageBroker
type captureBroker struct {
	produced []BrokerMessage
	failure  error
}

func (b *captureBroker) Produce(msg BrokerMessage) error {
	if b.failure != nil {
		return b.failure
	}
	b.produced = append(b.produced, msg)
	return nil
}

func (b *captureBroker) Consume(topic string) (<-chan BrokerMessage, error) {
	ch := make(chan BrokerMessage)
	close(ch)
	return ch, nil
}

func (b *captureBroker) Close() error {
	return nil
}

// captureBroadcaster 记录所有广播的 MessageBroadcaster
type captureBroadcaster struct {
	matchIDs []string
	events   []interface{}
}

func (b *captureBroadcaster) BroadcastEvent(matchID string, event interface{}) {
	b.matchIDs = append(b.matchIDs, matchID)
	b.events = append(b.events, event)
}
