package infra

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bettybots/internal/models/db_models"
)

// OpenDatabase connects to Postgres when dsn is a postgres:// URL and to an
// embedded SQLite file otherwise, then migrates the schema.
func OpenDatabase(dsn string, log *zap.Logger) (*gorm.DB, error) {
	dialector, driver := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY between them.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := db.AutoMigrate(&db_models.Tenant{}, &db_models.Subscription{}, &db_models.Lead{}); err != nil {
		return nil, fmt.Errorf("migrate %s database: %w", driver, err)
	}

	log.Info("database ready", zap.String("driver", driver))
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn), "postgres"
	}
	return sqlite.Open(sqliteDSN(dsn)), "sqlite"
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()
}

func CloseDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("error closing database connection", zap.Error(err))
	} else {
		log.Info("database connection closed")
	}
}
