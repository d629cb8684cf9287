package services

import (
	"context"
	"encoding/json"
	"testing"

	"match-event-service/models"
)

func correlationMessage(t *testing.T, matchID, competitionID string) BrokerMessage {
	t.Helper()
	value, err := EncodeCorrelation(matchID, competitionID)
	if err != nil {
		t.Fatalf("Failed to encode correlation: %v", err)
	}
	return BrokerMessage{Topic: TopicMatchCorrelations, Key: matchID, Value: value}
}

func TestCorrelatorSavesUnassignedMatch(t *testing.T) {
	stats := newFakeStatsStore()
	correlator := NewCorrelator(NewInMemoryBroker(), stats)

	correlator.processMessage(correlationMessage(t, "match-1", "comp-1"))

	if stats.unassigned["match-1"] != "comp-1" {
		t.Errorf("Expected match-1 correlated to comp-1, got %v", stats.unassigned)
	}
}

// 重复投递不产生重复记录，插入是幂等的
func TestCorrelatorRedelivery(t *testing.T) {
	stats := newFakeStatsStore()
	correlator := NewCorrelator(NewInMemoryBroker(), stats)

	msg := correlationMessage(t, "match-1", "comp-1")
	correlator.processMessage(msg)
	correlator.processMessage(msg)

	if len(stats.unassigned) != 1 {
		t.Errorf("Expected a single correlation record, got %d", len(stats.unassigned))
	}
}

func TestCorrelatorIncompleteMessageDropped(t *testing.T) {
	stats := newFakeStatsStore()
	correlator := NewCorrelator(NewInMemoryBroker(), stats)

	value, _ := json.Marshal(CorrelationMessage{MatchID: "match-1"})
	correlator.processMessage(BrokerMessage{Topic: TopicMatchCorrelations, Key: "match-1", Value: value})

	if len(stats.unassigned) != 0 {
		t.Errorf("Expected no correlation records, got %v", stats.unassigned)
	}
}

func TestCorrelatorMalformedMessageDropped(t *testing.T) {
	stats := newFakeStatsStore()
	correlator := NewCorrelator(NewInMemoryBroker(), stats)

	correlator.processMessage(BrokerMessage{Topic: TopicMatchCorrelations, Key: "match-1", Value: []byte("not json")})

	if len(stats.unassigned) != 0 {
		t.Errorf("Expected no correlation records, got %v", stats.unassigned)
	}
}

func TestCorrelatorEndToEnd(t *testing.T) {
	broker := NewInMemoryBroker()
	stats := newFakeStatsStore()

	correlator := NewCorrelator(broker, stats)
	if err := correlator.Start(); err != nil {
		t.Fatalf("Failed to start correlator: %v", err)
	}
	defer broker.Close()

	matches := newFakeMatchStore()
	service := NewMatchService(matches, broker)

	match := &models.Match{
		CompetitionID: "comp-1",
		HomeTeamID:    "team-a",
		AwayTeamID:    "team-b",
	}
	if err := service.CreateMatch(context.Background(), match); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	waitFor(t, func() bool {
		stats.mu.Lock()
		defer stats.mu.Unlock()
		return stats.unassigned[match.ID] == "comp-1"
	})
}
