package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Supported DB_DRIVER values
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the connection settings read from the environment.
type Config struct {
	Driver     string
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SSLMode    string
	SQLitePath string
}

// LoadConfig reads the DB_* variables.
func LoadConfig() Config {
	driver := env.GetEnv("DB_DRIVER", DriverMySQL)
	defPort := "3306"
	if driver == DriverPostgres {
		defPort = "5432"
	}
	return Config{
		Driver:     driver,
		User:       env.GetEnv("DB_USER", ""),
		Password:   env.GetEnv("DB_PASSWORD", ""),
		Host:       env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:       env.GetEnv("DB_PORT", defPort),
		Name:       env.GetEnv("DB_NAME", ""),
		SSLMode:    env.GetEnv("DB_SSLMODE", "disable"),
		SQLitePath: env.GetEnv("DB_SQLITE_PATH", "energyledger.db"),
	}
}

// Dialector builds the gorm dialector for the configured driver.
func (c Config) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Name)
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(c.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// SetupDatabase connects with retries and migrates the schema. It panics
// when no connection can be made.
func SetupDatabase() {
	cfg := LoadConfig()
	dialector, err := cfg.Dialector()
	if err != nil {
		panic(err)
	}

	for i := 0; i < maxRetries; i++ {
		var db *gorm.DB
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			if err = Migrate(db); err != nil {
				log.Errorf("[Database] AutoMigrate failed: %v", err)
			}
			DB = db
			log.Infof("[Database] Connected using %s driver", cfg.Driver)
			return
		}

		log.Warnf("[Database] Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// Migrate creates or updates the tables of all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.EnergyEntry{},
		&models.EntryFile{},
		&models.EntryReview{},
	)
}
