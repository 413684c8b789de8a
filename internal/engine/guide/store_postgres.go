package guide

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_study/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore keeps guides in Postgres, for multi-instance deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgresStore creates a pgx pool and runs schema migrations.
func ConnectPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("guide store: postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("guide store: migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, g *engine.StudyGuide) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("store: marshal guide: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO guides (id, video_id, video_url, title, topic, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, title = EXCLUDED.title, topic = EXCLUDED.topic`,
		g.ID, g.VideoID, g.VideoURL, g.Title, g.Topic, data, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: save guide %s: %w", g.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*engine.StudyGuide, error) {
	return s.getOne(ctx, `SELECT data FROM guides WHERE id = $1`, id)
}

func (s *PostgresStore) FindByVideo(ctx context.Context, videoID string) (*engine.StudyGuide, error) {
	return s.getOne(ctx, `SELECT data FROM guides WHERE video_id = $1 ORDER BY created_at DESC LIMIT 1`, videoID)
}

func (s *PostgresStore) getOne(ctx context.Context, query, arg string) (*engine.StudyGuide, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guide %q: %w", arg, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", arg, err)
	}
	var g engine.StudyGuide
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", arg, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT level, data FROM recommendations WHERE guide_id = $1`, g.ID)
	if err != nil {
		return nil, fmt.Errorf("store: recommendations %s: %w", g.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			level string
			raw   []byte
		)
		if err := rows.Scan(&level, &raw); err != nil {
			return nil, err
		}
		var recs []engine.Recommendation
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("store: decode recommendations %s/%s: %w", g.ID, level, err)
		}
		if g.Recommendations == nil {
			g.Recommendations = make(map[string][]engine.Recommendation)
		}
		g.Recommendations[level] = recs
	}
	return &g, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]engine.StudyGuideSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, video_url, topic, created_at FROM guides ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []engine.StudyGuideSummary
	for rows.Next() {
		var sum engine.StudyGuideSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.VideoURL, &sum.Topic, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveRecommendations(ctx context.Context, guideID, level string, recs []engine.Recommendation) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO recommendations (guide_id, level, data) VALUES ($1, $2, $3)
		 ON CONFLICT (guide_id, level) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		guideID, level, data,
	)
	if err != nil {
		return fmt.Errorf("store: save recommendations %s/%s: %w", guideID, level, err)
	}
	return nil
}

func (s *PostgresStore) SaveAudio(ctx context.Context, guideID string, mp3 []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audio (guide_id, mp3) VALUES ($1, $2)
		 ON CONFLICT (guide_id) DO UPDATE SET mp3 = EXCLUDED.mp3`,
		guideID, mp3,
	)
	if err != nil {
		return fmt.Errorf("store: save audio %s: %w", guideID, err)
	}
	return nil
}

func (s *PostgresStore) Audio(ctx context.Context, guideID string) ([]byte, error) {
	var mp3 []byte
	err := s.pool.QueryRow(ctx, `SELECT mp3 FROM audio WHERE guide_id = $1`, guideID).Scan(&mp3)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("audio for %q: %w", guideID, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: audio %s: %w", guideID, err)
	}
	return mp3, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
