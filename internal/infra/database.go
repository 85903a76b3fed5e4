package infra

import (
	"fmt"

	"carbonledger/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes), and finally seeds the emission-factor
// reference tables when they are empty.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	if err := SeedReferenceData(db); err != nil {
		return nil, fmt.Errorf("seed reference data: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema: AutoMigrate from the models plus the SQL
// patches below. Also used by the integration test suite against a fresh
// container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Contract{},
		&model.Product{},
		&model.MaterialEntry{},
		&model.TransportEntry{},
		&model.MaterialFactor{},
		&model.TransportFactor{},
		&model.ElectricityFactor{},
		&model.FactorRefreshLog{},
		&model.Report{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own. Each statement uses IF NOT EXISTS / guarded
// DO blocks so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the report retry cron query
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'reports')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_reports_pending_retry') THEN
		    CREATE INDEX idx_reports_pending_retry
		        ON reports (next_retry_at)
		        WHERE status = 'pending' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
		// Transport legs must not outlive their material entry. AutoMigrate
		// creates the FK from the constraint tag on fresh schemas; this guard
		// repairs databases migrated before the tag existed.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'transport_entries')
		    AND NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_transport_entries_material_entry') THEN
		    ALTER TABLE transport_entries
		      ADD CONSTRAINT fk_transport_entries_material_entry
		      FOREIGN KEY (material_entry_id) REFERENCES material_entries(id) ON DELETE CASCADE;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
