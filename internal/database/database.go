package database

import (
	"database/sql"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/gamevault/internal/models"
	"github.com/example/gamevault/internal/utils"
)

// Connect initializes the database connection, runs migrations and seeds
// the read-only catalog tables.
func Connect(dsn string) *gorm.DB {
	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := seedCatalog(conn); err != nil {
		log.Fatalf("catalog seeding failed: %v", err)
	}

	return conn
}

func migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.Company{},
		&models.Genre{},
		&models.Game{},
		&models.User{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

// seedCatalog fills the read-only company and genre tables on first run.
// Both are managed outside this service, so existing rows are left alone.
func seedCatalog(conn *gorm.DB) error {
	var n int64
	if err := conn.Model(&models.Genre{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		genres := []models.Genre{
			{Name: "Action"},
			{Name: "RPG"},
			{Name: "Adventure"},
			{Name: "Strategy"},
			{Name: "Shooter"},
			{Name: "Simulation"},
			{Name: "Sports"},
			{Name: "Puzzle"},
		}
		if err := conn.Create(&genres).Error; err != nil {
			return err
		}
	}

	if err := conn.Model(&models.Company{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		companies := []models.Company{
			{Name: "Nintendo"},
			{Name: "Valve"},
			{Name: "CD Projekt"},
			{Name: "Ubisoft"},
			{Name: "FromSoftware"},
		}
		if err := conn.Create(&companies).Error; err != nil {
			return err
		}
	}

	return nil
}

// EnsureAdmin creates the admin account when it does not exist yet.
func EnsureAdmin(conn *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var existing models.User
	err := conn.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	return conn.Create(&admin).Error
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
