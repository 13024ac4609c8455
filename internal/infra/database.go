package infra

import (
	"fmt"
	"strings"

	"storevision/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection and migrates the schema.
//
// postgres:// and postgresql:// URLs use the pgx-backed postgres driver.
// sqlite://<path>, file:<dsn> and :memory: open SQLite, which is used for
// local runs and by the test suites; SQLite has no row locks, so the ledger
// relies on its guarded updates there.
func NewDatabase(dsn string) (*gorm.DB, error) {
	dialector, isSQLite, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		// One connection serialises writers; SQLite would otherwise answer
		// concurrent transactions with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table, then applies the patches
// AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

func dialectorFor(dsn string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return postgres.Open(dsn), false, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), true, nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return sqlite.Open(dsn), true, nil
	case dsn == "":
		return nil, false, fmt.Errorf("DATABASE_URL vacío")
	default:
		return nil, false, fmt.Errorf("DATABASE_URL no soportado: %q", dsn)
	}
}

// applySchemaPatches runs idempotent DDL that only makes sense on postgres.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	patches := []string{
		// ledger rows are append-only: refuse UPDATE and DELETE at the database
		`CREATE OR REPLACE FUNCTION movimientos_inventario_inmutable() RETURNS trigger AS $$
		BEGIN
		  RAISE EXCEPTION 'movimientos_inventario es de solo inserción';
		END $$ LANGUAGE plpgsql`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_movimientos_inventario_inmutable') THEN
		    CREATE TRIGGER trg_movimientos_inventario_inmutable
		      BEFORE UPDATE OR DELETE ON movimientos_inventario
		      FOR EACH ROW EXECUTE FUNCTION movimientos_inventario_inmutable();
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_productos_bajo_minimo') THEN
		    CREATE INDEX idx_productos_bajo_minimo ON productos (stock_actual)
		      WHERE activo = true AND stock_actual <= stock_minimo;
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
