package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"agrocontrol_app_go/config"

	mysqldriver "github.com/go-sql-driver/mysql"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Opener opens the underlying gorm connection. The gateway calls it lazily
// from Connect, and again if the connection was dropped.
type Opener func(ctx context.Context) (*gorm.DB, error)

// OpenerFor returns an Opener for the configured driver
func OpenerFor(cfg *config.Config) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		return Open(ctx, cfg)
	}
}

// Open connects to the configured database and verifies it with a ping
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// Determine log level based on environment
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	ConfigurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gdb, nil
}

// ConfigurePool restricts the pool to the single long-lived connection the
// application shares across every entity.
func ConfigurePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(cfg)), nil
	case config.DriverTurso:
		if cfg.TursoDatabaseURL == "" {
			return nil, fmt.Errorf("TURSO_DATABASE_URL is required for the %s driver", config.DriverTurso)
		}
		return sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        TursoDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken),
		}), nil
	default:
		return sqlite.Open(SQLiteDSN(cfg.DBPath)), nil
	}
}

// SQLiteDSN enables WAL and foreign key enforcement on a sqlite path
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_journal_mode=WAL&_foreign_keys=on"
}

// MySQLDSN builds the DSN for the MySQL server that hosts the stored procedures.
// clientFoundRows makes UPDATE report matched rows, so an unchanged record is
// not mistaken for a missing one.
func MySQLDSN(cfg *config.Config) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// TursoDSN appends the auth token to a libsql URL
func TursoDSN(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// sqlxDriverName maps the configured driver to the name sqlx uses for bind types
func sqlxDriverName(driver string) string {
	switch driver {
	case config.DriverMySQL:
		return "mysql"
	case config.DriverTurso:
		return "libsql"
	default:
		return "sqlite3"
	}
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(gdb *gorm.DB, models ...interface{}) error {
	if gdb == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
