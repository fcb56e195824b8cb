package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fixhub/estimator-cli/internal/db"
	"github.com/fixhub/estimator-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS estimates (
	id            TEXT PRIMARY KEY,
	job_id        TEXT NOT NULL UNIQUE,
	materials     JSONB NOT NULL,
	total_cost    DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence    INTEGER NOT NULL DEFAULT 0,
	model         TEXT NOT NULL DEFAULT '',
	processing_ms BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS templates (
	id               TEXT PRIMARY KEY,
	service_type     TEXT NOT NULL UNIQUE,
	keywords         JSONB NOT NULL,
	common_materials JSONB NOT NULL,
	usage_count      INTEGER NOT NULL DEFAULT 0,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_estimates_job_id ON estimates(job_id);
CREATE INDEX IF NOT EXISTS idx_templates_service_type ON templates(service_type);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetEstimate(ctx context.Context, jobID string) (*model.MaterialEstimate, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, job_id, materials, total_cost, confidence, model, processing_ms, created_at, updated_at
		 FROM estimates WHERE job_id = $1`,
		jobID,
	)

	var est model.MaterialEstimate
	var materialsJSON []byte
	err := row.Scan(&est.ID, &est.JobID, &materialsJSON, &est.TotalEstimatedCost,
		&est.Confidence, &est.Model, &est.ProcessingTime, &est.CreatedAt, &est.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get estimate")
	}
	if err := json.Unmarshal(materialsJSON, &est.Materials); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal materials")
	}
	return &est, nil
}

func (s *PostgresStore) UpsertEstimate(ctx context.Context, est *model.MaterialEstimate) (*model.MaterialEstimate, error) {
	materialsJSON, err := json.Marshal(est.Materials)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal materials")
	}

	now := time.Now().UTC()
	id := est.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO estimates (id, job_id, materials, total_cost, confidence, model, processing_ms, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (job_id) DO UPDATE SET
			materials     = excluded.materials,
			total_cost    = excluded.total_cost,
			confidence    = excluded.confidence,
			model         = excluded.model,
			processing_ms = excluded.processing_ms,
			updated_at    = excluded.updated_at`,
		id, est.JobID, materialsJSON, est.TotalEstimatedCost,
		est.Confidence, est.Model, est.ProcessingTime, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert estimate %s", est.JobID)
	}

	return s.GetEstimate(ctx, est.JobID)
}

func (s *PostgresStore) GetTemplate(ctx context.Context, serviceType string) (*model.MaterialTemplate, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, service_type, keywords, common_materials, usage_count, updated_at
		 FROM templates WHERE service_type = $1`,
		serviceType,
	)

	tpl, err := scanPgTemplate(row)
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *PostgresStore) ListTemplates(ctx context.Context) ([]model.MaterialTemplate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, service_type, keywords, common_materials, usage_count, updated_at
		 FROM templates ORDER BY service_type`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list templates")
	}
	defer rows.Close()

	var templates []model.MaterialTemplate
	for rows.Next() {
		tpl, err := scanPgTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, eris.Wrap(rows.Err(), "postgres: list templates iterate")
}

func (s *PostgresStore) UpsertTemplate(ctx context.Context, tpl *model.MaterialTemplate) error {
	keywordsJSON, err := json.Marshal(tpl.Keywords)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal keywords")
	}
	materialsJSON, err := json.Marshal(tpl.CommonMaterials)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal common materials")
	}

	id := tpl.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO templates (id, service_type, keywords, common_materials, usage_count, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (service_type) DO UPDATE SET
			keywords         = excluded.keywords,
			common_materials = excluded.common_materials,
			updated_at       = excluded.updated_at`,
		id, tpl.ServiceType, keywordsJSON, materialsJSON,
		tpl.UsageCount, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert template %s", tpl.ServiceType)
}

func (s *PostgresStore) IncrementTemplateUsage(ctx context.Context, serviceType string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE service_type = $1`,
		serviceType,
	)
	return eris.Wrapf(err, "postgres: increment template usage %s", serviceType)
}

func scanPgTemplate(row pgx.Row) (*model.MaterialTemplate, error) {
	var tpl model.MaterialTemplate
	var keywordsJSON, materialsJSON []byte

	err := row.Scan(&tpl.ID, &tpl.ServiceType, &keywordsJSON, &materialsJSON,
		&tpl.UsageCount, &tpl.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan template")
	}

	if err := json.Unmarshal(keywordsJSON, &tpl.Keywords); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal keywords")
	}
	if err := json.Unmarshal(materialsJSON, &tpl.CommonMaterials); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal common materials")
	}
	return &tpl, nil
}
