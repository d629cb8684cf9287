package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"match-event-service/config"
	"match-event-service/models"
	"match-event-service/pkg/common"
	"match-event-service/services"
)

type Server struct {
	config       *config.Config
	matchService *services.MatchService
	eventService *services.EventService
	stats        services.StatsStore
	roster       services.RosterStore
	wsHub        *Hub
	httpServer   *http.Server
	upgrader     websocket.Upgrader
}

func NewServer(cfg *config.Config, matchService *services.MatchService, eventService *services.EventService, stats services.StatsStore, roster services.RosterStore, hub *Hub) *Server {
	return &Server{
		config:       cfg,
		matchService: matchService,
		eventService: eventService,
		stats:        stats,
		roster:       roster,
		wsHub:        hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源(生产环境需要限制)
			},
		},
	}
}

func (s *Server) Start() error {
	router := mux.NewRouter()

	// API路由
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/matches/{match_id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/matches/{match_id}", s.handleDeleteMatch).Methods("DELETE")
	api.HandleFunc("/matches/{match_id}/events", s.handleGetMatchEvents).Methods("GET")
	api.HandleFunc("/matches/{match_id}/events", s.handleRecordEvent).Methods("POST")
	api.HandleFunc("/competitions/{competition_id}/standings", s.handleGetStandings).Methods("GET")
	api.HandleFunc("/competitions/{competition_id}/player-stats", s.handleGetPlayerStats).Methods("GET")
	api.HandleFunc("/teams/{team_id}/players", s.handleGetTeamPlayers).Methods("GET")
	api.HandleFunc("/teams/{team_id}/players", s.handleAddTeamPlayer).Methods("POST")

	// WebSocket路由
	router.HandleFunc("/ws", s.handleWebSocket)

	// CORS配置
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// CreateMatchRequest 创建比赛请求
type CreateMatchRequest struct {
	CompetitionID string    `json:"competitionId"`
	HomeTeamID    string    `json:"homeTeamId"`
	AwayTeamID    string    `json:"awayTeamId"`
	VenueID       string    `json:"venueId,omitempty"`
	RefereeID     string    `json:"refereeId,omitempty"`
	StartTime     time.Time `json:"startTime"`
}

// handleCreateMatch 创建比赛
func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CompetitionID == "" || req.HomeTeamID == "" || req.AwayTeamID == "" {
		writeError(w, http.StatusUnprocessableEntity, "competitionId, homeTeamId and awayTeamId are required")
		return
	}
	if req.HomeTeamID == req.AwayTeamID {
		writeError(w, http.StatusUnprocessableEntity, "homeTeamId and awayTeamId must differ")
		return
	}

	match := &models.Match{
		CompetitionID: req.CompetitionID,
		HomeTeamID:    req.HomeTeamID,
		AwayTeamID:    req.AwayTeamID,
		VenueID:       req.VenueID,
		RefereeID:     req.RefereeID,
		StartTime:     req.StartTime,
	}

	if err := s.matchService.CreateMatch(r.Context(), match); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, match)
}

// handleGetMatch 获取比赛
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	match, err := s.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// handleDeleteMatch 软删除比赛
func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	if err := s.matchService.DeleteMatch(r.Context(), matchID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetMatchEvents 获取比赛的事件列表
func (s *Server) handleGetMatchEvents(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	events, err := s.matchService.ListEvents(r.Context(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match_id": matchID,
		"events":   events,
	})
}

// handleRecordEvent 记录比赛事件，验证失败返回 422 与字段级错误
func (s *Server) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["match_id"]

	var insert models.InsertEvent
	if err := json.NewDecoder(r.Body).Decode(&insert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := s.eventService.ProcessEvent(r.Context(), matchID, &insert)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// handleGetStandings 获取赛事积分榜
func (s *Server) handleGetStandings(w http.ResponseWriter, r *http.Request) {
	competitionID := mux.Vars(r)["competition_id"]

	standings, err := s.stats.ListTeamStats(r.Context(), competitionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"competition_id": competitionID,
		"standings":      standings,
	})
}

// handleGetPlayerStats 获取赛事射手榜
func (s *Server) handleGetPlayerStats(w http.ResponseWriter, r *http.Request) {
	competitionID := mux.Vars(r)["competition_id"]

	players, err := s.stats.ListPlayerStats(r.Context(), competitionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"competition_id": competitionID,
		"players":        players,
	})
}

// handleGetTeamPlayers 获取球队名单
func (s *Server) handleGetTeamPlayers(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["team_id"]

	players, err := s.roster.ListTeamPlayers(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"players": players,
	})
}

// AddTeamPlayerRequest 添加名单球员请求
type AddTeamPlayerRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Number   int    `json:"number,omitempty"`
}

// handleAddTeamPlayer 向球队名单添加球员
func (s *Server) handleAddTeamPlayer(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["team_id"]

	var req AddTeamPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PlayerID == "" || req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "playerId and name are required")
		return
	}

	player := &models.TeamPlayer{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		PlayerID: req.PlayerID,
		Name:     req.Name,
		Position: req.Position,
		Number:   req.Number,
		Active:   true,
	}

	if err := s.roster.AddTeamPlayer(r.Context(), player); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

// handleWebSocket WebSocket连接处理
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:      s.wsHub,
		conn:     conn,
		send:     make(chan []byte, 256),
		matchIDs: make(map[string]bool),
	}

	client.hub.register <- client

	// 发送欢迎消息
	welcomeMsg := &WSMessage{
		Type: "connected",
		Data: map[string]interface{}{
			"message": "Connected to match event stream",
			"time":    time.Now().Unix(),
		},
	}
	welcomeData, _ := json.Marshal(welcomeMsg)
	client.send <- welcomeData

	go client.writePump()
	go client.readPump()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
