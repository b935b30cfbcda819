package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_records",
		SQL: `CREATE TABLE IF NOT EXISTS records (
  farm_id    TEXT        NOT NULL,
  id         TEXT        NOT NULL,
  kind       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ,
  doc        JSONB       NOT NULL,
  PRIMARY KEY (farm_id, id)
);`,
	},
	{
		Name: "create_index_records_kind",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_farm_kind ON records (farm_id, kind);`,
	},
	{
		Name: "create_index_records_kind_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_farm_kind_date ON records (farm_id, kind, (doc->>'date'));`,
	},
	{
		Name: "create_index_records_sale_buyer",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_farm_kind_buyer ON records (farm_id, kind, (doc->>'buyer'));`,
	},
}

// EnsureMigrated checks whether the records table exists and applies the
// schema if it doesn't. Every step is idempotent, so a concurrent migrator
// racing on the sentinel check is harmless.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	start := time.Now()
	log = log.Named("migration")

	var exists bool
	query := "SELECT to_regclass('public.records') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("sentinel table check failed", zap.Error(err))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed",
				zap.String("step", step.Name), zap.Error(err))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("migration step applied",
			zap.String("step", step.Name),
			zap.Duration("elapsed", time.Since(stepStart)))
	}

	log.Info("schema migrated", zap.Duration("elapsed", time.Since(start)))
	return nil
}
