package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"blogposts/app/config"
	"blogposts/app/models"
	"blogposts/app/repositories"
	"blogposts/app/services"

	"github.com/Pallinder/go-randomdata"
)

// CLI runs the blogposts subcommands against the configured store.
type CLI struct {
	Config  *config.Config
	Version string
	In      io.Reader
	Out     io.Writer

	// serve is swapped out in tests
	serve func(ctx context.Context, cfg *config.Config) error
}

func NewCLI(cfg *config.Config, version string, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		Config:  cfg,
		Version: version,
		In:      in,
		Out:     out,
		serve:   RunAppServer,
	}
}

// Run handles a subcommand and returns the process exit code.
func (c *CLI) Run(args []string) int {
	if len(args) < 1 {
		c.printHelp()
		return 1
	}

	cmd := strings.ToLower(args[0])
	rest := args[1:]
	switch cmd {
	case "serve":
		return c.runServe()
	case "init":
		return c.initDb()
	case "clean":
		return c.clean(hasFlag(rest, "--force"))
	case "backup":
		return c.backup()
	case "restore":
		files := positional(rest)
		if len(files) < 1 {
			fmt.Fprintln(c.Out, "Error: backup file path required for restore")
			return 1
		}
		return c.restore(files[0], hasFlag(rest, "--force"))
	case "seed":
		n := 10
		if p := positional(rest); len(p) > 0 {
			v, err := strconv.Atoi(p[0])
			if err != nil || v < 1 {
				fmt.Fprintf(c.Out, "Error: invalid post count %q\n", p[0])
				return 1
			}
			n = v
		}
		return c.seed(n)
	case "version":
		fmt.Fprintf(c.Out, "blogposts version %s\n", c.Version)
		return 0
	case "help":
		c.printHelp()
		return 0
	default:
		fmt.Fprintf(c.Out, "Unknown command: %s\n\n", args[0])
		c.printHelp()
		return 1
	}
}

func (c *CLI) printHelp() {
	helpText := `Usage: blogposts <command> [options]

Commands:
  serve                    Run the blog post HTTP service
  init                     Initialize a new empty database
  clean [--force]          Remove the blog database
  backup                   Create a backup of the database (badger store only)
  restore <file> [--force] Restore database from backup (badger store only)
  seed [n]                 Insert n placeholder posts (default 10)
  version                  Show version information
  help                     Display this help message

Configuration is read from BLOG_* environment variables and an optional .env file.
`
	fmt.Fprintln(c.Out, helpText)
}

func (c *CLI) runServe() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.serve(ctx, c.Config); err != nil {
		fmt.Fprintf(c.Out, "Server error: %v\n", err)
		return 1
	}
	return 0
}

// dbPath is the on-disk location of the configured store.
func (c *CLI) dbPath() string {
	if c.Config.Store == config.StoreSQLite {
		return c.Config.SQLitePath
	}
	return c.Config.DataDir
}

// initDb initializes a new empty database.
func (c *CLI) initDb() int {
	if _, err := os.Stat(c.dbPath()); err == nil {
		fmt.Fprintln(c.Out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	_, closeDB, err := openRepository(c.Config)
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to initialize database: %v\n", err)
		return 1
	}
	if err := closeDB(); err != nil {
		fmt.Fprintf(c.Out, "Failed to close database: %v\n", err)
		return 1
	}

	fmt.Fprintln(c.Out, "Database initialized successfully")
	return 0
}

// clean removes the database.
func (c *CLI) clean(force bool) int {
	path := c.dbPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(c.Out, "Database is already clean (does not exist)")
		return 0
	}

	if !force && !c.confirm("Are you sure you want to clean the database? This cannot be undone. [y/N] ") {
		fmt.Fprintln(c.Out, "Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(c.Out, "Failed to clean database: %v\n", err)
		return 1
	}
	if c.Config.Store == config.StoreSQLite {
		// WAL side files
		os.Remove(path + "-wal")
		os.Remove(path + "-shm")
	}
	fmt.Fprintln(c.Out, "Database cleaned successfully")
	return 0
}

// backup creates a backup of the database.
func (c *CLI) backup() int {
	if c.Config.Store != config.StoreBadger {
		fmt.Fprintln(c.Out, "Error: backup is only supported for the badger store")
		return 1
	}
	if _, err := os.Stat(c.Config.DataDir); os.IsNotExist(err) {
		fmt.Fprintln(c.Out, "No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(c.Config.BackupDir, 0755); err != nil {
		fmt.Fprintf(c.Out, "Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.OpenStore(c.Config.DataDir, false)
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(c.Config.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := store.Backup(w); err != nil {
		fmt.Fprintf(c.Out, "Failed to backup database: %v\n", err)
		return 1
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(c.Out, "Failed to write backup file: %v\n", err)
		return 1
	}

	fmt.Fprintf(c.Out, "Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore restores the database from a backup.
func (c *CLI) restore(backupFile string, force bool) int {
	if c.Config.Store != config.StoreBadger {
		fmt.Fprintln(c.Out, "Error: restore is only supported for the badger store")
		return 1
	}

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Fprintf(c.Out, "Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Fprintf(c.Out, "Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(c.Config.DataDir); err == nil {
		if !force && !c.confirm("Existing database found. Do you want to replace it? [y/N] ") {
			fmt.Fprintln(c.Out, "Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(c.Config.DataDir); err != nil {
			fmt.Fprintf(c.Out, "Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	store, err := repositories.OpenStore(c.Config.DataDir, false)
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Restore(bufio.NewReader(f)); err != nil {
		fmt.Fprintf(c.Out, "Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Fprintln(c.Out, "Database restored successfully")
	return 0
}

// seed inserts n posts filled with placeholder data.
func (c *CLI) seed(n int) int {
	repo, closeDB, err := openRepository(c.Config)
	if err != nil {
		fmt.Fprintf(c.Out, "Failed to open database: %v\n", err)
		return 1
	}
	defer closeDB()

	postService := services.NewPostService(repo)
	for i := 0; i < n; i++ {
		if _, err := postService.CreatePost(placeholderPost()); err != nil {
			fmt.Fprintf(c.Out, "Failed to seed post %d: %v\n", i+1, err)
			return 1
		}
	}

	fmt.Fprintf(c.Out, "Seeded %d posts\n", n)
	return 0
}

func placeholderPost() *models.PostInput {
	return &models.PostInput{
		Title:   randomdata.SillyName() + " " + randomdata.City(),
		Content: randomdata.Paragraph(),
		Author: &models.AuthorInput{
			FirstName: randomdata.FirstName(randomdata.RandomGender),
			LastName:  randomdata.LastName(),
		},
	}
}

func (c *CLI) confirm(prompt string) bool {
	fmt.Fprint(c.Out, prompt)
	line, _ := bufio.NewReader(c.In).ReadString('\n')
	response := strings.TrimSpace(line)
	return response == "y" || response == "Y"
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			out = append(out, a)
		}
	}
	return out
}
