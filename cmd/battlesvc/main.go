// medasim の対戦観戦サービスです。
// REST で戦闘を開始し、WebSocket で戦闘イベントをストリーミングします。
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"medasim/data"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type server struct {
	hub *hub
}

func main() {
	assetsDir := getenv("MEDASIM_ASSETS", "assets")
	addr := getenv("MEDASIM_ADDR", ":8080")
	tickMillis, _ := strconv.Atoi(getenv("MEDASIM_TICK_MS", "100"))
	if tickMillis <= 0 {
		tickMillis = 100
	}

	cfg, err := data.LoadConfig(filepath.Join(assetsDir, "balance.yaml"))
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	gdm, err := data.LoadMasterData(assetsDir)
	if err != nil {
		log.Fatalf("マスターデータの読み込みに失敗しました: %v", err)
	}
	gameData, err := data.LoadGameData(assetsDir, gdm)
	if err != nil {
		log.Fatalf("編成データの読み込みに失敗しました: %v", err)
	}

	s := &server{hub: newHub(cfg, gdm, gameData, time.Duration(tickMillis)*time.Millisecond)}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/battles", s.handleCreateBattle).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}", s.handleBattleStatus).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/pause", s.handlePause).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}/events", s.handleEvents).Methods(http.MethodGet)

	log.Printf("battlesvc を %s で起動します", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed     int64 `json:"seed"`
		MaxTicks int   `json:"max_ticks"`
	}
	if r.Body != nil {
		// ボディ省略時は既定値で開始する。
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.MaxTicks <= 0 {
		req.MaxTicks = 100000
	}
	b, err := s.hub.startBattle(req.Seed, req.MaxTicks)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": b.id})
}

func (s *server) handleBattleStatus(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupBattle(w, r)
	if !ok {
		return
	}
	result := b.runner.Result()
	status := map[string]any{
		"id":     b.id,
		"phase":  string(b.runner.Phase()),
		"turn":   b.runner.Turn(),
		"ticks":  b.runner.Ticks(),
		"paused": b.runner.Paused(),
	}
	if result.IsGameOver {
		status["winner"] = int(result.Winner)
		status["message"] = result.Message
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handlePause(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupBattle(w, r)
	if !ok {
		return
	}
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "不正なリクエストボディです"})
		return
	}
	b.runner.SetPaused(req.Paused)
	writeJSON(w, http.StatusOK, map[string]any{"paused": b.runner.Paused()})
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupBattle(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket へのアップグレードに失敗しました: %v", err)
		return
	}
	if err := b.subscribe(conn); err != nil {
		conn.Close()
		return
	}
	defer b.unsubscribe(conn)
	// 読み取りは切断検知のためだけに行う。
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *server) lookupBattle(w http.ResponseWriter, r *http.Request) (*battle, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "不正な戦闘IDです"})
		return nil, false
	}
	b, ok := s.hub.battle(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "戦闘が見つかりません"})
		return nil, false
	}
	return b, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("レスポンスの書き込みに失敗しました: %v", err)
	}
}
