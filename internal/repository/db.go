package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"weather-news-bot/internal/model"
)

// Tables lists every entity managed by the bot, in migration order.
var Tables = []interface{}{&model.User{}, &model.Log{}}

// NewDB opens the database named by dsn and runs migrations.
//
// A dsn starting with "mysql://" selects MySQL, everything else is treated as
// a SQLite path (an optional "sqlite:///" or "sqlite://" prefix is stripped).
func NewDB(dsn string) (*gorm.DB, error) {
	dialector, err := openDialector(dsn)
	if err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(Tables...); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

func openDialector(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	if rest, ok := strings.CutPrefix(dsn, "mysql://"); ok {
		return mysql.Open(rest), nil
	}

	path := sqlitePath(dsn)
	if err := ensureDirForSQLite(path); err != nil {
		return nil, err
	}
	return sqlite.Open(path), nil
}

// sqlitePath converts SQLAlchemy-style URLs ("sqlite:///bot.db") to a plain path.
func sqlitePath(dsn string) string {
	if rest, ok := strings.CutPrefix(dsn, "sqlite:///"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		return rest
	}
	return dsn
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
