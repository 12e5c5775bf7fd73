// Package archive persists finished games to postgres for long-term history.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/halfmove/chessduel/internal/domain"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// ArchiveResult upserts a finished game. Re-archiving the same session is a
// no-op update, so the caller may safely retry.
func (p *Postgres) ArchiveResult(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.Result == nil {
		return fmt.Errorf("session has no result to archive")
	}

	moves, err := json.Marshal(sess.Moves)
	if err != nil {
		return fmt.Errorf("marshal moves: %w", err)
	}
	pgn := BuildPGN(sess)
	duration := sess.UpdatedAt.Sub(sess.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	const q = `INSERT INTO games (
	    game_id, white_player, black_player,
	    winner, termination, fen, moves, pgn,
	    started_at, ended_at, duration_ms
	  ) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10,$11)
	  ON CONFLICT (game_id) DO UPDATE SET
	    winner=EXCLUDED.winner,
	    termination=EXCLUDED.termination,
	    fen=EXCLUDED.fen,
	    moves=EXCLUDED.moves,
	    pgn=EXCLUDED.pgn,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err = p.db.ExecContext(ctx, q,
		sess.ID,
		sess.WhitePlayer, sess.BlackPlayer,
		string(sess.Result.Winner), string(sess.Result.Termination),
		sess.FEN, moves, pgn,
		sess.CreatedAt, sess.UpdatedAt, duration,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}
