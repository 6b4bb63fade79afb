package db

import (
	"database/sql"
	_ "embed"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Setting keys
const (
	KeySession       = "session"
	KeyLastProjectID = "last_project_id"
	KeySortKey       = "sort_key"
	KeyCurrentUserID = "current_user_id"
	KeyAPIToken      = "api_token"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Open opens the database at path and initializes the schema
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// DeleteSetting removes a setting
func (db *DB) DeleteSetting(key string) error {
	_, err := db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

// HasSession reports whether the durable session marker is set
func (db *DB) HasSession() (bool, error) {
	v, err := db.GetSetting(KeySession)
	if err != nil {
		return false, err
	}
	ok, _ := strconv.ParseBool(v)
	return ok, nil
}

// SetSession records that a session exists
func (db *DB) SetSession() error {
	return db.SetSetting(KeySession, "true")
}

// ClearSession removes the session marker together with the stored API
// token and the signed-in user id
func (db *DB) ClearSession() error {
	_, err := db.Exec("DELETE FROM settings WHERE key IN (?, ?, ?)",
		KeySession, KeyAPIToken, KeyCurrentUserID)
	return err
}
