package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fixhub/estimator-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS estimates (
	id            TEXT PRIMARY KEY,
	job_id        TEXT NOT NULL UNIQUE,
	materials     TEXT NOT NULL,
	total_cost    REAL NOT NULL DEFAULT 0,
	confidence    INTEGER NOT NULL DEFAULT 0,
	model         TEXT NOT NULL DEFAULT '',
	processing_ms INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS templates (
	id               TEXT PRIMARY KEY,
	service_type     TEXT NOT NULL UNIQUE,
	keywords         TEXT NOT NULL,
	common_materials TEXT NOT NULL,
	usage_count      INTEGER NOT NULL DEFAULT 0,
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_estimates_job_id ON estimates(job_id);
CREATE INDEX IF NOT EXISTS idx_templates_service_type ON templates(service_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetEstimate(ctx context.Context, jobID string) (*model.MaterialEstimate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, job_id, materials, total_cost, confidence, model, processing_ms, created_at, updated_at
		 FROM estimates WHERE job_id = ?`,
		jobID,
	)

	var est model.MaterialEstimate
	var materialsJSON string
	err := row.Scan(&est.ID, &est.JobID, &materialsJSON, &est.TotalEstimatedCost,
		&est.Confidence, &est.Model, &est.ProcessingTime, &est.CreatedAt, &est.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get estimate")
	}
	if err := json.Unmarshal([]byte(materialsJSON), &est.Materials); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal materials")
	}
	return &est, nil
}

// UpsertEstimate replaces-or-inserts the estimate keyed by job_id. The row
// id is assigned on first insert and preserved across re-estimates.
func (s *SQLiteStore) UpsertEstimate(ctx context.Context, est *model.MaterialEstimate) (*model.MaterialEstimate, error) {
	materialsJSON, err := json.Marshal(est.Materials)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal materials")
	}

	now := time.Now().UTC()
	id := est.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO estimates (id, job_id, materials, total_cost, confidence, model, processing_ms, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
			materials     = excluded.materials,
			total_cost    = excluded.total_cost,
			confidence    = excluded.confidence,
			model         = excluded.model,
			processing_ms = excluded.processing_ms,
			updated_at    = excluded.updated_at`,
		id, est.JobID, string(materialsJSON), est.TotalEstimatedCost,
		est.Confidence, est.Model, est.ProcessingTime, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert estimate %s", est.JobID)
	}

	// Read back so the caller sees the store-assigned id and timestamps,
	// including the original created_at on re-estimates.
	return s.GetEstimate(ctx, est.JobID)
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, serviceType string) (*model.MaterialTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, service_type, keywords, common_materials, usage_count, updated_at
		 FROM templates WHERE service_type = ?`,
		serviceType,
	)
	return scanTemplate(row)
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]model.MaterialTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, service_type, keywords, common_materials, usage_count, updated_at
		 FROM templates ORDER BY service_type`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list templates")
	}
	defer rows.Close()

	var templates []model.MaterialTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, eris.Wrap(rows.Err(), "sqlite: list templates iterate")
}

func (s *SQLiteStore) UpsertTemplate(ctx context.Context, tpl *model.MaterialTemplate) error {
	keywordsJSON, err := json.Marshal(tpl.Keywords)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal keywords")
	}
	materialsJSON, err := json.Marshal(tpl.CommonMaterials)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal common materials")
	}

	id := tpl.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, service_type, keywords, common_materials, usage_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(service_type) DO UPDATE SET
			keywords         = excluded.keywords,
			common_materials = excluded.common_materials,
			updated_at       = excluded.updated_at`,
		id, tpl.ServiceType, string(keywordsJSON), string(materialsJSON),
		tpl.UsageCount, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert template %s", tpl.ServiceType)
}

// IncrementTemplateUsage bumps the usage counter. Best-effort: a missing
// template is not an error.
func (s *SQLiteStore) IncrementTemplateUsage(ctx context.Context, serviceType string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE service_type = ?`,
		serviceType,
	)
	return eris.Wrapf(err, "sqlite: increment template usage %s", serviceType)
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanTemplate(row scannable) (*model.MaterialTemplate, error) {
	var tpl model.MaterialTemplate
	var keywordsJSON, materialsJSON string

	err := row.Scan(&tpl.ID, &tpl.ServiceType, &keywordsJSON, &materialsJSON,
		&tpl.UsageCount, &tpl.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan template")
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &tpl.Keywords); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal keywords")
	}
	if err := json.Unmarshal([]byte(materialsJSON), &tpl.CommonMaterials); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal common materials")
	}
	return &tpl, nil
}
