package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
)

const (
	dialectPostgres = "postgres"
	dialectMySQL    = "mysql"
	dialectSQLite   = "sqlite"
)

// OpenDB opens the SQL database named by dsn, picking the dialect from its shape:
// postgres:// or postgresql:// URLs use PostgreSQL, sqlite:// and file: use SQLite,
// anything else is parsed as a MySQL DSN.
func OpenDB(dsn string) (*gorm.DB, string, error) {
	dialector, dialect, err := dialectorFromDSN(dsn)
	if err != nil {
		return nil, "", err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: dialect != dialectSQLite,
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "open %s database", dialect)
	}

	if err = db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, "", errors.Wrap(err, "install gorm tracing plugin")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", errors.Wrap(err, "get sql database handle")
	}
	sqlDB.SetMaxIdleConns(config.SQLMaxIdleConns)
	sqlDB.SetMaxOpenConns(config.SQLMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Second * time.Duration(config.SQLMaxLifetime))

	logger.Logger.Info("database connected", zap.String("dialect", dialect))
	return db, dialect, nil
}

// Migrate creates or alters the tools and tools_health_checks tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Tool{}, &HealthCheck{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	logger.Logger.Info("database migrated")
	return nil
}

func dialectorFromDSN(dsn string) (gorm.Dialector, string, error) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)
	switch {
	case dsn == "":
		return nil, "", errors.New("SQL_DSN is empty")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), dialectPostgres, nil
	case strings.HasPrefix(lower, "sqlite://"):
		path, err := ensureSQLitePath(dsn[len("sqlite://"):])
		if err != nil {
			return nil, "", err
		}
		return sqlite.Open(path), dialectSQLite, nil
	case strings.HasPrefix(lower, "file:"):
		return sqlite.Open(dsn), dialectSQLite, nil
	default:
		cfg, err := mysqldriver.ParseDSN(dsn)
		if err != nil {
			return nil, "", errors.Wrap(err, "parse mysql dsn")
		}
		cfg.ParseTime = true
		return mysql.Open(cfg.FormatDSN()), dialectMySQL, nil
	}
}

// ensureSQLitePath makes sure the directory of the database file exists and is writable.
// Query options after "?" are preserved.
func ensureSQLitePath(raw string) (string, error) {
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		return "", errors.New("sqlite path is empty")
	}
	if path == ":memory:" {
		return raw, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve sqlite path %q", path)
	}
	absPath = filepath.Clean(absPath)

	dir := filepath.Dir(absPath)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create sqlite directory %q", dir)
	}

	check, err := os.CreateTemp(dir, ".tsiolkovsky-write-check-*")
	if err != nil {
		return "", errors.Wrapf(err, "sqlite directory %q is not writable", dir)
	}
	_ = check.Close()
	_ = os.Remove(check.Name())

	if query != "" {
		return absPath + "?" + query, nil
	}
	return absPath, nil
}
