package models

import (
	"encoding/json"
	"testing"
)

func TestValidMinute(t *testing.T) {
	valid := []string{
		"1", "5", "9",
		"10", "45", "46", "90", "99", "100", "119", "120",
		"45+1", "45+2", "45+10", "90+5", "90+15", "120+1", "120+10",
	}
	for _, minute := range valid {
		if !ValidMinute(minute) {
			t.Errorf("Expected minute %q to be valid", minute)
		}
	}

	invalid := []string{
		"", "0", "00", "09", "121", "130", "999", "1000",
		"45+", "90+", "120+", "45+123",
		"44+1", "91+1", "46+2", "119+1",
		"-5", "abc", "45 + 2", "+2", "45++2",
	}
	for _, minute := range invalid {
		if ValidMinute(minute) {
			t.Errorf("Expected minute %q to be invalid", minute)
		}
	}
}

func TestParseCardType(t *testing.T) {
	for _, name := range []string{"YELLOW", "SECOND_YELLOW", "DIRECT_RED"} {
		if _, ok := ParseCardType(name); !ok {
			t.Errorf("Expected card type %q to be recognized", name)
		}
	}

	for _, name := range []string{"", "RED", "yellow", "BLUE"} {
		if _, ok := ParseCardType(name); ok {
			t.Errorf("Expected card type %q to be rejected", name)
		}
	}
}

func TestCardTypeIsRed(t *testing.T) {
	if CardYellow.IsRed() {
		t.Error("Expected YELLOW not to count as red")
	}
	if !CardSecondYellow.IsRed() {
		t.Error("Expected SECOND_YELLOW to count as red")
	}
	if !CardDirectRed.IsRed() {
		t.Error("Expected DIRECT_RED to count as red")
	}
}

func TestInsertEventUnmarshalGoal(t *testing.T) {
	data := []byte(`{
		"type": "GOAL",
		"minute": "45+2",
		"teamId": "team-a",
		"scoringPlayer": "tp-1",
		"assistingPlayer": "tp-2",
		"ownGoal": false
	}`)

	var event InsertEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if event.Type != EventTypeGoal {
		t.Errorf("Expected type GOAL, got %q", event.Type)
	}
	if event.Minute != "45+2" {
		t.Errorf("Expected minute '45+2', got %q", event.Minute)
	}
	if event.Goal == nil {
		t.Fatal("Expected goal payload to be set")
	}
	if event.Goal.ScoringPlayer != "tp-1" {
		t.Errorf("Expected scoring player 'tp-1', got %q", event.Goal.ScoringPlayer)
	}
	if event.Goal.AssistingPlayer != "tp-2" {
		t.Errorf("Expected assisting player 'tp-2', got %q", event.Goal.AssistingPlayer)
	}
	if event.Status != nil || event.Card != nil || event.Penalty != nil {
		t.Error("Expected only the goal variant to be set")
	}
}

func TestInsertEventUnmarshalStatus(t *testing.T) {
	data := []byte(`{"type": "STATUS", "minute": "90", "targetStatus": "FINISHED"}`)

	var event InsertEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if event.Type != EventTypeStatus {
		t.Errorf("Expected type STATUS, got %q", event.Type)
	}
	if event.Status == nil || event.Status.TargetStatus != "FINISHED" {
		t.Errorf("Expected target status FINISHED, got %+v", event.Status)
	}
}

func TestInsertEventUnmarshalUnknownType(t *testing.T) {
	data := []byte(`{"type": "VAR_REVIEW", "minute": "10"}`)

	var event InsertEvent
	if err := json.Unmarshal(data, &event); err == nil {
		t.Error("Expected error for unknown event type")
	}
}

func TestInsertEventMarshalRoundTrip(t *testing.T) {
	original := InsertEvent{
		Type:   EventTypePenalty,
		Minute: "88",
		Penalty: &InsertPenaltyEvent{
			TeamID:         "team-b",
			ShootingPlayer: "tp-9",
			CountAsGoal:    true,
			Scored:         true,
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}

	var decoded InsertEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected unmarshal error: %v", err)
	}

	if decoded.Type != EventTypePenalty || decoded.Minute != "88" {
		t.Errorf("Expected penalty event at minute 88, got %+v", decoded)
	}
	if decoded.Penalty == nil || *decoded.Penalty != *original.Penalty {
		t.Errorf("Expected penalty payload %+v, got %+v", original.Penalty, decoded.Penalty)
	}
}

func TestMatchEventPayloadRoundTrip(t *testing.T) {
	event := MatchEvent{
		ID:            "event-1",
		MatchID:       "match-1",
		CompetitionID: "comp-1",
		Type:          EventTypeCard,
		Minute:        "33",
		Card: &CardEventPayload{
			TeamID:   "team-a",
			CardType: CardSecondYellow,
			CardedPlayer: EventPlayer{
				TeamPlayerID: "tp-4",
				PlayerID:     "p-4",
				Name:         "Defender",
			},
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}

	var decoded MatchEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected unmarshal error: %v", err)
	}

	if decoded.Type != EventTypeCard {
		t.Errorf("Expected type CARD, got %q", decoded.Type)
	}
	if decoded.Card == nil || decoded.Card.CardType != CardSecondYellow {
		t.Errorf("Expected SECOND_YELLOW card payload, got %+v", decoded.Card)
	}
	if decoded.Card.CardedPlayer.PlayerID != "p-4" {
		t.Errorf("Expected carded player 'p-4', got %q", decoded.Card.CardedPlayer.PlayerID)
	}
}
