package database

import (
	"database/sql"
	"fmt"

	"ticketing-svc/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func InitDB(cfg config.Config, logger *zap.Logger) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The UNIQUE constraint on paystack_reference is the idempotence
	// guarantee for webhook redelivery; concurrent deliveries of the
	// same reference race on it and exactly one insert wins.
	createTablesQuery := `
	CREATE TABLE IF NOT EXISTS purchases (
		id SERIAL PRIMARY KEY,
		buyer_name VARCHAR(255) NOT NULL,
		buyer_email VARCHAR(255) NOT NULL,
		inventory JSONB NOT NULL,
		total_amount BIGINT NOT NULL,
		paystack_reference VARCHAR(255) NOT NULL UNIQUE,
		purchase_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tickets (
		id SERIAL PRIMARY KEY,
		identifier VARCHAR(64) NOT NULL UNIQUE,
		paystack_reference VARCHAR(255) NOT NULL,
		ticket_type VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		seq INTEGER NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'generated',
		used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(createTablesQuery); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}
