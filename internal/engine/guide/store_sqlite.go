package guide

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// SQLiteStore is the default single-node store.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is ~/.go_study/guides.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_study", "guides.db")
}

// OpenSQLiteStore opens (or creates) the database at path and its schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS guides (
			id         TEXT PRIMARY KEY,
			video_id   TEXT NOT NULL,
			video_url  TEXT NOT NULL,
			title      TEXT NOT NULL,
			topic      TEXT,
			data       TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS guides_video_id ON guides (video_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			guide_id   TEXT NOT NULL,
			level      TEXT NOT NULL,
			data       TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (guide_id, level)
		)`,
		`CREATE TABLE IF NOT EXISTS audio (
			guide_id   TEXT PRIMARY KEY,
			mp3        BLOB NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, g *engine.StudyGuide) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("store: marshal guide: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO guides (id, video_id, video_url, title, topic, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, title = excluded.title, topic = excluded.topic`,
		g.ID, g.VideoID, g.VideoURL, g.Title, g.Topic, string(data), g.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: save guide %s: %w", g.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*engine.StudyGuide, error) {
	return s.getOne(ctx, `SELECT data FROM guides WHERE id = ?`, id)
}

func (s *SQLiteStore) FindByVideo(ctx context.Context, videoID string) (*engine.StudyGuide, error) {
	return s.getOne(ctx, `SELECT data FROM guides WHERE video_id = ? ORDER BY created_at DESC LIMIT 1`, videoID)
}

func (s *SQLiteStore) getOne(ctx context.Context, query, arg string) (*engine.StudyGuide, error) {
	var data string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("guide %q: %w", arg, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", arg, err)
	}
	var g engine.StudyGuide
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", arg, err)
	}
	if err := s.loadRecommendations(ctx, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *SQLiteStore) loadRecommendations(ctx context.Context, g *engine.StudyGuide) error {
	rows, err := s.db.QueryContext(ctx, `SELECT level, data FROM recommendations WHERE guide_id = ?`, g.ID)
	if err != nil {
		return fmt.Errorf("store: recommendations %s: %w", g.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var level, data string
		if err := rows.Scan(&level, &data); err != nil {
			return err
		}
		var recs []engine.Recommendation
		if err := json.Unmarshal([]byte(data), &recs); err != nil {
			return fmt.Errorf("store: decode recommendations %s/%s: %w", g.ID, level, err)
		}
		if g.Recommendations == nil {
			g.Recommendations = make(map[string][]engine.Recommendation)
		}
		g.Recommendations[level] = recs
	}
	return rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]engine.StudyGuideSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, video_url, COALESCE(topic, ''), created_at FROM guides ORDER BY created_at DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []engine.StudyGuideSummary
	for rows.Next() {
		var (
			sum     engine.StudyGuideSummary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.VideoURL, &sum.Topic, &created); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveRecommendations(ctx context.Context, guideID, level string, recs []engine.Recommendation) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (guide_id, level, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(guide_id, level) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		guideID, level, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save recommendations %s/%s: %w", guideID, level, err)
	}
	return nil
}

func (s *SQLiteStore) SaveAudio(ctx context.Context, guideID string, mp3 []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audio (guide_id, mp3, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(guide_id) DO UPDATE SET mp3 = excluded.mp3`,
		guideID, mp3, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save audio %s: %w", guideID, err)
	}
	return nil
}

func (s *SQLiteStore) Audio(ctx context.Context, guideID string) ([]byte, error) {
	var mp3 []byte
	err := s.db.QueryRowContext(ctx, `SELECT mp3 FROM audio WHERE guide_id = ?`, guideID).Scan(&mp3)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audio for %q: %w", guideID, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: audio %s: %w", guideID, err)
	}
	return mp3, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
