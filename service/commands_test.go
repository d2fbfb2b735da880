package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogposts/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T, store string) *config.Config {
	tmpDir := t.TempDir()
	return &config.Config{
		Addr:            "127.0.0.1:0",
		Store:           store,
		DataDir:         filepath.Join(tmpDir, "badger"),
		SQLitePath:      filepath.Join(tmpDir, "blog.db"),
		BackupDir:       filepath.Join(tmpDir, "backups"),
		BaseURL:         "http://localhost",
		FeedTitle:       "Test feed",
		ShutdownTimeout: time.Second,
	}
}

func newTestCLI(cfg *config.Config, input string) (*CLI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewCLI(cfg, "test", strings.NewReader(input), out), out
}

func countPosts(t *testing.T, cfg *config.Config) int {
	t.Helper()
	repo, closeDB, err := openRepository(cfg)
	require.NoError(t, err)
	defer closeDB()
	n, err := repo.Count()
	require.NoError(t, err)
	return n
}

func TestHandleCommand(t *testing.T) {
	cfg := setupTestConfig(t, config.StoreBadger)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: blogposts <command> [options]\n\nCommands:",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: blogposts <command> [options]\n\nCommands:",
			expectedExit:   0,
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedOutput: "blogposts version test",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "seed with invalid count",
			args:           []string{"seed", "many"},
			expectedOutput: `Error: invalid post count "many"`,
			expectedExit:   1,
		},
		{
			name:           "seed with zero count",
			args:           []string{"seed", "0"},
			expectedOutput: `Error: invalid post count "0"`,
			expectedExit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := newTestCLI(cfg, "")
			exitCode := cli.Run(tt.args)

			assert.Contains(t, out.String(), tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestInitAndClean(t *testing.T) {
	for _, store := range []string{config.StoreBadger, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			cfg := setupTestConfig(t, store)

			cli, out := newTestCLI(cfg, "")
			assert.Equal(t, 0, cli.Run([]string{"init"}))
			assert.Contains(t, out.String(), "Database initialized successfully")

			cli, out = newTestCLI(cfg, "")
			assert.Equal(t, 0, cli.Run([]string{"init"}))
			assert.Contains(t, out.String(), "Database already exists")

			cli, out = newTestCLI(cfg, "")
			assert.Equal(t, 0, cli.Run([]string{"clean", "--force"}))
			assert.Contains(t, out.String(), "Database cleaned successfully")

			_, err := os.Stat(cli.dbPath())
			assert.True(t, os.IsNotExist(err))

			cli, out = newTestCLI(cfg, "")
			assert.Equal(t, 0, cli.Run([]string{"clean"}))
			assert.Contains(t, out.String(), "Database is already clean")
		})
	}
}

func TestCleanConfirmation(t *testing.T) {
	cfg := setupTestConfig(t, config.StoreBadger)
	cli, _ := newTestCLI(cfg, "")
	require.Equal(t, 0, cli.Run([]string{"init"}))

	cli, out := newTestCLI(cfg, "n\n")
	assert.Equal(t, 1, cli.Run([]string{"clean"}))
	assert.Contains(t, out.String(), "Operation cancelled")
	_, err := os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	cli, out = newTestCLI(cfg, "y\n")
	assert.Equal(t, 0, cli.Run([]string{"clean"}))
	assert.Contains(t, out.String(), "Database cleaned successfully")
}

func TestSeed(t *testing.T) {
	for _, store := range []string{config.StoreBadger, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			cfg := setupTestConfig(t, store)

			cli, out := newTestCLI(cfg, "")
			assert.Equal(t, 0, cli.Run([]string{"seed", "5"}))
			assert.Contains(t, out.String(), "Seeded 5 posts")

			cli, _ = newTestCLI(cfg, "")
			assert.Equal(t, 0, cli.Run([]string{"seed"}))

			assert.Equal(t, 15, countPosts(t, cfg))
		})
	}
}

func TestBackupAndRestore(t *testing.T) {
	cfg := setupTestConfig(t, config.StoreBadger)

	cli, out := newTestCLI(cfg, "")
	assert.Equal(t, 1, cli.Run([]string{"backup"}))
	assert.Contains(t, out.String(), "No database exists to backup")

	cli, _ = newTestCLI(cfg, "")
	require.Equal(t, 0, cli.Run([]string{"seed", "3"}))

	cli, out = newTestCLI(cfg, "")
	require.Equal(t, 0, cli.Run([]string{"backup"}))
	assert.Contains(t, out.String(), "Database backed up successfully")

	backups, err := filepath.Glob(filepath.Join(cfg.BackupDir, "backup_*.db"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	cli, _ = newTestCLI(cfg, "")
	require.Equal(t, 0, cli.Run([]string{"clean", "--force"}))

	cli, out = newTestCLI(cfg, "")
	assert.Equal(t, 0, cli.Run([]string{"restore", backups[0]}))
	assert.Contains(t, out.String(), "Database restored successfully")
	assert.Equal(t, 3, countPosts(t, cfg))

	// restoring over an existing database asks first
	cli, out = newTestCLI(cfg, "n\n")
	assert.Equal(t, 1, cli.Run([]string{"restore", backups[0]}))
	assert.Contains(t, out.String(), "Operation cancelled")

	cli, _ = newTestCLI(cfg, "")
	assert.Equal(t, 0, cli.Run([]string{"restore", backups[0], "--force"}))
	assert.Equal(t, 3, countPosts(t, cfg))
}

func TestRestoreErrors(t *testing.T) {
	cfg := setupTestConfig(t, config.StoreBadger)

	cli, out := newTestCLI(cfg, "")
	assert.Equal(t, 1, cli.Run([]string{"restore", filepath.Join(t.TempDir(), "missing.db")}))
	assert.Contains(t, out.String(), "Backup file does not exist")

	empty := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	cli, out = newTestCLI(cfg, "")
	assert.Equal(t, 1, cli.Run([]string{"restore", empty}))
	assert.Contains(t, out.String(), "Backup file is empty")
}

func TestBackupRequiresBadger(t *testing.T) {
	cfg := setupTestConfig(t, config.StoreSQLite)

	cli, out := newTestCLI(cfg, "")
	assert.Equal(t, 1, cli.Run([]string{"backup"}))
	assert.Contains(t, out.String(), "only supported for the badger store")

	cli, out = newTestCLI(cfg, "")
	assert.Equal(t, 1, cli.Run([]string{"restore", "backup.db"}))
	assert.Contains(t, out.String(), "only supported for the badger store")
}

func TestServeCommand(t *testing.T) {
	cfg := setupTestConfig(t, config.StoreBadger)

	var got *config.Config
	cli, _ := newTestCLI(cfg, "")
	cli.serve = func(ctx context.Context, c *config.Config) error {
		got = c
		return nil
	}
	assert.Equal(t, 0, cli.Run([]string{"serve"}))
	assert.Same(t, cfg, got)

	cli, out := newTestCLI(cfg, "")
	cli.serve = func(ctx context.Context, c *config.Config) error {
		return errors.New("address in use")
	}
	assert.Equal(t, 1, cli.Run([]string{"serve"}))
	assert.Contains(t, out.String(), "Server error: address in use")
}
