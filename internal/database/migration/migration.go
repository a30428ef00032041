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
		Name: "create_table_service_desk_queues",
		SQL: `CREATE TABLE IF NOT EXISTS service_desk_queues (
  service_desk_id TEXT    NOT NULL,
  id              TEXT    NOT NULL,
  name            TEXT    NOT NULL,
  position        INTEGER NOT NULL CHECK (position >= 0),
  PRIMARY KEY (service_desk_id, id)
);`,
	},
	{
		Name: "create_index_service_desk_queues_position",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_service_desk_queues_position ON service_desk_queues (service_desk_id, position);`,
	},
	{
		Name: "create_table_queue_syncs",
		SQL: `CREATE TABLE IF NOT EXISTS queue_syncs (
  id              UUID        PRIMARY KEY,
  service_desk_id TEXT        NOT NULL,
  snapshot_key    TEXT        NOT NULL UNIQUE,
  queue_count     INTEGER     NOT NULL CHECK (queue_count >= 0),
  synced_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_queue_syncs_service_desk_synced_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_queue_syncs_service_desk_synced_at ON queue_syncs (service_desk_id, synced_at DESC);`,
	},
}

// EnsureMigrated checks if the 'service_desk_queues' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.service_desk_queues') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
