// Package config loads and stores the database connection profile in the XDG config dir.
// Only non-secret fields are persisted; the password and database name never touch disk.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"querychat/cli/internal/xdg"
)

// DBType identifies the kind of database the backend should connect to.
type DBType string

const (
	DBTypeMySQL    DBType = "mysql"
	DBTypePostgres DBType = "postgres"
)

// Profile holds the user-supplied database connection parameters.
// Password and Database live only in process memory; Save excludes them
// by construction and Load always returns them empty.
type Profile struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Type     DBType
}

// Default returns the profile used before the user configures anything.
func Default() Profile {
	return Profile{
		Host: "localhost",
		Port: 3306,
		User: "root",
		Type: DBTypeMySQL,
	}
}

// record is the persisted shape. Secrets have no field here, so they
// cannot be written even by mistake.
type record struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	User string `json:"user"`
	Type DBType `json:"database_type"`
}

// path returns the path to the profile file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "connection.json"), nil
}

// Load reads the persisted profile. Any failure (missing file, bad JSON,
// unreadable dir) yields the default profile; Load never fails.
func Load() Profile {
	p, err := path()
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Default()
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Default()
	}
	prof := Default()
	if r.Host != "" {
		prof.Host = r.Host
	}
	if r.Port != 0 {
		prof.Port = r.Port
	}
	if r.User != "" {
		prof.User = r.User
	}
	if r.Type != "" {
		prof.Type = r.Type
	}
	return prof
}

// Save writes the non-secret fields with 0600 permissions.
// Callers treat failures as non-fatal; nothing surfaces to the user.
func Save(prof Profile) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(record{
		Host: prof.Host,
		Port: prof.Port,
		User: prof.User,
		Type: prof.Type,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
