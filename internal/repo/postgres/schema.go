package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doorlab/roomkey-bookings/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		room_id BIGINT NOT NULL REFERENCES rooms(id),
		booking_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		access_code TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room_date ON bookings (room_id, booking_date) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS rate_limits (
		rl_key TEXT PRIMARY KEY,
		count INT NOT NULL,
		window_start TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

// defaultRooms mirrors the rooms provisioned at the deployment site.
var defaultRooms = []struct {
	name     string
	imageURL string
}{
	{"Game Room", "https://via.placeholder.com/300x200/4CAF50/white?text=Game+Room"},
	{"Meeting Room1", "https://via.placeholder.com/300x200/2196F3/white?text=Meeting+Room+1"},
	{"Meeting Room2", "https://via.placeholder.com/300x200/FF9800/white?text=Meeting+Room+2"},
	{"Cooking Room", "https://via.placeholder.com/300x200/E91E63/white?text=Cooking+Room"},
	{"Facial Sauna Room", "https://via.placeholder.com/300x200/9C27B0/white?text=Sauna+Room"},
	{"Karaoke Room", "https://via.placeholder.com/300x200/FF5722/white?text=Karaoke+Room"},
}

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "1234"
)

// Migrate creates the tables if they do not exist and seeds default data
// on an empty database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return SeedDefaults(ctx, pool)
}

// SeedDefaults inserts the default admin user and rooms when the
// corresponding tables are empty. Idempotent.
func SeedDefaults(ctx context.Context, pool *pgxpool.Pool) error {
	var userCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		hash, err := argon2id.CreateHash(defaultAdminPassword, argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("hash default password: %w", err)
		}
		if _, err := pool.Exec(ctx, `INSERT INTO users (username, password_hash) VALUES ($1,$2)`, defaultAdminUsername, hash); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		logger.Info("Seeded default admin user", "username", defaultAdminUsername)
	}

	var roomCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&roomCount); err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if roomCount == 0 {
		for _, room := range defaultRooms {
			if _, err := pool.Exec(ctx, `INSERT INTO rooms (name, image_url) VALUES ($1,$2)`, room.name, room.imageURL); err != nil {
				return fmt.Errorf("seed room %q: %w", room.name, err)
			}
		}
		logger.Info("Seeded default rooms", "count", len(defaultRooms))
	}

	return nil
}

// ResetToDefaults clears bookings and users and re-seeds the defaults.
// Destructive, operator use only.
func ResetToDefaults(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var deleted int64
	for _, table := range []string{"bookings", "users"} {
		ct, err := pool.Exec(ctx, `DELETE FROM `+table)
		if err != nil {
			return deleted, fmt.Errorf("clear %s: %w", table, err)
		}
		deleted += ct.RowsAffected()
	}

	if _, err := pool.Exec(ctx, `UPDATE rooms SET status='available'`); err != nil {
		return deleted, fmt.Errorf("reset room status: %w", err)
	}

	return deleted, SeedDefaults(ctx, pool)
}
