// Package store は、戦闘結果の永続化を担当します。
// バックエンドは SQLite で、バッチシミュレーションの集計に使用します。
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"medasim/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS battle_records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT    NOT NULL,
	seed       INTEGER NOT NULL,
	winner     INTEGER NOT NULL,
	turns      INTEGER NOT NULL,
	ticks      INTEGER NOT NULL,
	message    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_battle_records_winner ON battle_records(winner);
`

// BattleRecord は1戦闘分の結果レコードです。
type BattleRecord struct {
	ID        int64
	StartedAt time.Time
	Seed      int64
	Winner    core.TeamID
	Turns     int
	Ticks     int
	Message   string
}

// Store は戦闘結果データベースへのハンドルです。
type Store struct {
	db *sql.DB
}

// Open はデータベースを開き、スキーマを初期化します。
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("データベースを開けませんでした: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマの初期化に失敗しました: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecord は戦闘結果を保存し、採番された ID を設定します。
func (s *Store) SaveRecord(rec *BattleRecord) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO battle_records (started_at, seed, winner, turns, ticks, message) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(time.RFC3339), rec.Seed, int(rec.Winner), rec.Turns, rec.Ticks, rec.Message,
	)
	if err != nil {
		return fmt.Errorf("戦闘結果の保存に失敗しました: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// RecentRecords は新しい順に最大 limit 件のレコードを返します。
func (s *Store) RecentRecords(limit int) ([]BattleRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, seed, winner, turns, ticks, message FROM battle_records ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("戦闘結果の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var records []BattleRecord
	for rows.Next() {
		var rec BattleRecord
		var startedAt string
		var winner int
		if err := rows.Scan(&rec.ID, &startedAt, &rec.Seed, &winner, &rec.Turns, &rec.Ticks, &rec.Message); err != nil {
			return nil, err
		}
		rec.Winner = core.TeamID(winner)
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// WinCounts はチームごとの勝利数を返します。引き分けは core.TeamNone に計上されます。
func (s *Store) WinCounts() (map[core.TeamID]int, error) {
	rows, err := s.db.Query(`SELECT winner, COUNT(*) FROM battle_records GROUP BY winner`)
	if err != nil {
		return nil, fmt.Errorf("勝利数の集計に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.TeamID]int)
	for rows.Next() {
		var winner, count int
		if err := rows.Scan(&winner, &count); err != nil {
			return nil, err
		}
		counts[core.TeamID(winner)] = count
	}
	return counts, rows.Err()
}
