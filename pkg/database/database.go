package database

import (
	"fmt"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/pkg/logger"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB 打开数据库并执行版本化迁移
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))

	applied, err := Migrate(db)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database migration completed",
		zap.Ints("applied", applied),
		zap.Int("version", LatestVersion()),
	)
	return db, nil
}

// Open 只建立连接，不做迁移
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.LogQueries {
		logLevel = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
	case config.DriverSQLite, "":
		dsn, dsnErr := sqliteDSN(cfg.Path)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverMySQL {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	} else {
		// SQLite 单写者，串行化所有连接上的事务
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	return db, nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		path = "data/mindtrack.db"
	}
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create sqlite directory %s: %w", dir, err)
		}
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", nil
}
