package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/system"
	"medasim/event"
	"medasim/sim"
)

// wireEvent は WebSocket で配信するイベントの外部表現です。
type wireEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// battle は実行中の1戦闘です。tick ループが専用ゴルーチンで回り、
// 発生イベントを購読中の WebSocket クライアントへ配信します。
type battle struct {
	id     int
	runner *sim.Runner

	mu      sync.Mutex
	subs    map[*websocket.Conn]struct{}
	history []wireEvent
	done    bool
}

// hub は戦闘の生成と管理を行います。
type hub struct {
	cfg      data.Config
	gdm      *data.GameDataManager
	gameData *core.GameData

	mu      sync.Mutex
	nextID  int
	battles map[int]*battle

	tickEvery time.Duration
}

func newHub(cfg data.Config, gdm *data.GameDataManager, gameData *core.GameData, tickEvery time.Duration) *hub {
	return &hub{
		cfg:       cfg,
		gdm:       gdm,
		gameData:  gameData,
		battles:   make(map[int]*battle),
		tickEvery: tickEvery,
	}
}

// startBattle は新しい戦闘を開始し、tick ループを起動します。
func (h *hub) startBattle(seed int64, maxTicks int) (*battle, error) {
	runner, err := sim.New(sim.Options{
		Config:     &h.cfg,
		GameData:   h.gameData,
		MasterData: h.gdm,
		PlayerTeam: core.TeamNone,
		Seed:       seed,
		Logger:     &system.NopBattleLogger{},
	})
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.nextID++
	b := &battle{id: h.nextID, runner: runner, subs: make(map[*websocket.Conn]struct{})}
	h.battles[b.id] = b
	h.mu.Unlock()

	go b.run(maxTicks, h.tickEvery)
	return b, nil
}

func (h *hub) battle(id int) (*battle, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.battles[id]
	return b, ok
}

// run は決着が付くまで一定間隔で tick を進めます。
func (b *battle) run(maxTicks int, tickEvery time.Duration) {
	events, err := b.runner.Start()
	if err != nil {
		log.Printf("battle %d: 開始に失敗しました: %v", b.id, err)
		return
	}
	b.broadcast(events)

	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()
	for range ticker.C {
		if b.runner.Ticks() >= maxTicks || b.runner.Phase() == core.PhaseGameOver {
			break
		}
		events, err := b.runner.Tick()
		if err != nil {
			log.Printf("battle %d: tick に失敗しました: %v", b.id, err)
			break
		}
		b.broadcast(events)
	}

	b.mu.Lock()
	b.done = true
	for conn := range b.subs {
		conn.Close()
	}
	b.mu.Unlock()
}

// subscribe は接続を購読者に加え、過去のイベントを再送します。
func (b *battle) subscribe(conn *websocket.Conn) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range b.history {
		if err := conn.WriteJSON(ev); err != nil {
			return err
		}
	}
	if b.done {
		return fmt.Errorf("戦闘は終了しています")
	}
	b.subs[conn] = struct{}{}
	return nil
}

func (b *battle) unsubscribe(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.subs, conn)
	b.mu.Unlock()
}

func (b *battle) broadcast(events []event.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range events {
		wire := toWire(ev)
		b.history = append(b.history, wire)
		for conn := range b.subs {
			if err := conn.WriteJSON(wire); err != nil {
				conn.Close()
				delete(b.subs, conn)
			}
		}
	}
}

// toWire はゲームイベントを JSON 配信用の表現へ変換します。
func toWire(ev event.GameEvent) wireEvent {
	switch e := ev.(type) {
	case event.BattleStartedGameEvent:
		return wireEvent{Type: "battle_started"}
	case event.TurnStartedGameEvent:
		return wireEvent{Type: "turn_started", Payload: map[string]any{"turn": e.Turn}}
	case event.SelectionRequiredGameEvent:
		return wireEvent{Type: "selection_required", Payload: map[string]any{"unit_id": e.UnitID, "unit_name": e.UnitName}}
	case event.ActionCommittedGameEvent:
		return wireEvent{Type: "action_committed", Payload: map[string]any{
			"unit_name": e.UnitName,
			"part_key":  string(e.PartKey),
			"category":  string(e.Category),
		}}
	case event.ActionCanceledGameEvent:
		return wireEvent{Type: "action_canceled", Payload: map[string]any{"unit_name": e.UnitName, "reason": e.Reason}}
	case event.CombatOutcomeGameEvent:
		r := e.Result
		damages := make([]map[string]any, 0, len(r.DamageEvents))
		for _, d := range r.DamageEvents {
			damages = append(damages, map[string]any{
				"part_slot":   string(d.PartSlot),
				"damage":      d.Damage,
				"part_broken": d.PartBroken,
			})
		}
		return wireEvent{Type: "combat_outcome", Payload: map[string]any{
			"attacker":      r.AttackerName,
			"defender":      r.DefenderName,
			"action":        r.ActionName,
			"category":      string(r.ActionCategory),
			"hit":           r.ActionDidHit,
			"critical":      r.IsCritical,
			"defended":      r.IsDefended,
			"intercepted":   r.WasIntercepted,
			"heal_amount":   r.HealAmount,
			"damage_events": damages,
			"target_broken": r.TargetUnitBroken,
			"hit_part_slot": string(r.ActualHitPartSlot),
		}}
	case event.UnitBrokenGameEvent:
		return wireEvent{Type: "unit_broken", Payload: map[string]any{"unit_id": e.UnitID, "unit_name": e.UnitName, "team": int(e.Team)}}
	case event.GameOverGameEvent:
		return wireEvent{Type: "game_over", Payload: map[string]any{"winner": int(e.Winner), "message": e.Message}}
	}
	return wireEvent{Type: "unknown"}
}
