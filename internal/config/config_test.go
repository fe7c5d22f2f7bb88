package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoundTripRedactsSecrets(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	in := Profile{
		Host:     "db.internal",
		Port:     5433,
		User:     "analyst",
		Password: "hunter2",
		Database: "sales",
		Type:     DBTypePostgres,
	}
	if err := Save(in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := Load()
	if got.Host != in.Host || got.Port != in.Port || got.User != in.User || got.Type != in.Type {
		t.Errorf("Load() = %+v, want non-secret fields of %+v", got, in)
	}
	if got.Password != "" {
		t.Errorf("Password survived a save/load cycle: %q", got.Password)
	}
	if got.Database != "" {
		t.Errorf("Database survived a save/load cycle: %q", got.Database)
	}
}

func TestSavedFileNeverContainsSecrets(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := Save(Profile{
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "topsecret",
		Database: "shop",
		Type:     DBTypeMySQL,
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "querychat", "connection.json"))
	if err != nil {
		t.Fatalf("reading persisted profile: %v", err)
	}
	for _, secret := range []string{"topsecret", "shop"} {
		if strings.Contains(string(data), secret) {
			t.Errorf("persisted record contains secret %q: %s", secret, data)
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got := Load()
	want := Default()
	if got != want {
		t.Errorf("Load() = %+v, want defaults %+v", got, want)
	}
}

func TestLoadCorruptFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := os.MkdirAll(filepath.Join(dir, "querychat"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "querychat", "connection.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := Load()
	if got != Default() {
		t.Errorf("Load() on corrupt file = %+v, want defaults", got)
	}
}
