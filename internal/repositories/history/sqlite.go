package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/KirkDiggler/blacksheep/internal/repositories/history/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DefaultListLimit caps ListGames when no limit is given
const DefaultListLimit = 20

// ErrGameExists is returned when recording a game ID twice
var ErrGameExists = errors.New("game already recorded")

// Config holds configuration for the SQLite history store
type Config struct {
	// Path of the database file
	Path string
}

// sqliteRepository implements the Repository interface using SQLite
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLite opens the database at cfg.Path and applies embedded migrations
func NewSQLite(cfg *Config) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(cfg.Path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &sqliteRepository{db: db}, nil
}

// Close closes the database handle
func (r *sqliteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// RecordGame archives a finished game
func (r *sqliteRepository) RecordGame(ctx context.Context, input *RecordGameInput) error {
	if input == nil || input.Record == nil {
		return errors.New("input and record cannot be nil")
	}
	rec := input.Record
	if rec.ID == "" || rec.RoomCode == "" {
		return errors.New("record ID and room code are required")
	}

	names := rec.PlayerNames
	if names == nil {
		names = []string{}
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal player names: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO games (
		   id,
		   room_code,
		   rounds,
		   winner,
		   reason,
		   imposter_name,
		   main_word,
		   imposter_word,
		   category,
		   player_names,
		   finished_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.RoomCode,
		rec.Rounds,
		string(rec.Winner),
		rec.Reason,
		rec.ImposterName,
		rec.MainWord,
		rec.ImposterWord,
		rec.Category,
		string(namesJSON),
		rec.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		if isConstraintError(err) {
			return ErrGameExists
		}
		return fmt.Errorf("failed to record game: %w", err)
	}

	return nil
}

// ListGames returns a room's finished games, newest first
func (r *sqliteRepository) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_code, rounds, winner, reason, imposter_name, main_word,
		        imposter_word, category, player_names, finished_at
		   FROM games
		  WHERE room_code = ?
		  ORDER BY finished_at DESC, id
		  LIMIT ?`,
		input.RoomCode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.GameRecord, 0)
	for rows.Next() {
		var (
			rec        models.GameRecord
			winner     string
			namesJSON  string
			finishedAt int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.RoomCode,
			&rec.Rounds,
			&winner,
			&rec.Reason,
			&rec.ImposterName,
			&rec.MainWord,
			&rec.ImposterWord,
			&rec.Category,
			&namesJSON,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		if err := json.Unmarshal([]byte(namesJSON), &rec.PlayerNames); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player names: %w", err)
		}
		rec.Winner = models.Winner(winner)
		rec.FinishedAt = time.UnixMilli(finishedAt).UTC()
		games = append(games, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return &ListGamesOutput{
		Games: games,
	}, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
