package db

import (
	"database/sql"
	"fmt"
	"time"
)

type PlayerRecord struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// UpsertPlayer inserts the player or returns the existing row's id.
// Single atomic statement, so concurrent saves for the same new
// username cannot race into duplicates.
func (d *DB) UpsertPlayer(username string) (int64, error) {
	var id int64
	err := d.conn.QueryRow(`
		INSERT INTO players (username)
		VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting player: %w", err)
	}
	return id, nil
}

func (d *DB) GetPlayer(username string) (*PlayerRecord, error) {
	var p PlayerRecord
	err := d.conn.QueryRow(`
		SELECT id, username, created_at FROM players WHERE username = $1
	`, username).Scan(&p.ID, &p.Username, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &p, nil
}

func upsertPlayerTx(tx *sql.Tx, username string) (int64, error) {
	var id int64
	err := tx.QueryRow(`
		INSERT INTO players (username)
		VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting player %q: %w", username, err)
	}
	return id, nil
}

func upsertActivityTx(tx *sql.Tx, name, prefix string, station int) (int64, error) {
	var id int64
	err := tx.QueryRow(`
		INSERT INTO activities (activity_name, prefix, station_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (activity_name) DO UPDATE SET prefix = EXCLUDED.prefix, station_number = EXCLUDED.station_number
		RETURNING id
	`, name, prefix, station).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting activity %q: %w", name, err)
	}
	return id, nil
}
