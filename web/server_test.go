package web

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"match-event-service/pkg/common"
)

func TestWriteServiceErrorNotFound(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeServiceError(recorder, fmt.Errorf("match m1: %w", common.ErrNotFound))

	if recorder.Code != 404 {
		t.Errorf("Expected status 404, got %d", recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to unmarshal body: %v", err)
	}
	if body["error"] == "" {
		t.Error("Expected error message in body")
	}
}

func TestWriteServiceErrorInternal(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeServiceError(recorder, fmt.Errorf("connection refused"))

	if recorder.Code != 500 {
		t.Errorf("Expected status 500, got %d", recorder.Code)
	}
}

func TestClientShouldReceive(t *testing.T) {
	// 没有过滤器时接收所有消息
	client := &Client{matchIDs: make(map[string]bool)}
	if !client.shouldReceive(&WSMessage{Type: "match_event", MatchID: "match-1"}) {
		t.Error("Expected client without filter to receive all messages")
	}

	client.matchIDs["match-1"] = true
	if !client.shouldReceive(&WSMessage{Type: "match_event", MatchID: "match-1"}) {
		t.Error("Expected client to receive subscribed match")
	}
	if client.shouldReceive(&WSMessage{Type: "match_event", MatchID: "match-2"}) {
		t.Error("Expected client not to receive unsubscribed match")
	}
	if client.shouldReceive(&WSMessage{Type: "match_event"}) {
		t.Error("Expected filtered client not to receive messages without match id")
	}
}
