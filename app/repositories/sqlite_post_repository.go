package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogposts/app/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author_first_name TEXT NOT NULL,
	author_last_name TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLitePostRepository implements PostRepository on top of SQLite. The
// author is kept as two columns and only joined at the API boundary.
type SQLitePostRepository struct {
	db *sql.DB
}

// NewSQLitePostRepository opens (and if needed creates) the database at dsn.
func NewSQLitePostRepository(dsn string) (*SQLitePostRepository, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps the pragmas below in effect for every
	// query and gives :memory: one shared database
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLitePostRepository{db: db}, nil
}

func (r *SQLitePostRepository) Close() error {
	return r.db.Close()
}

// Clear removes every post.
func (r *SQLitePostRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM posts`)
	return err
}

func (r *SQLitePostRepository) Create(post *models.Post) error {
	post.ID = uuid.NewString()
	post.BeforeCreate()

	_, err := r.db.Exec(
		`INSERT INTO posts (id, title, content, author_first_name, author_last_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Content, post.Author.FirstName, post.Author.LastName,
		post.Created.Format(time.RFC3339Nano),
	)
	return err
}

func (r *SQLitePostRepository) GetByID(id string) (*models.Post, error) {
	row := r.db.QueryRow(
		`SELECT id, title, content, author_first_name, author_last_name, created_at FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *SQLitePostRepository) List() ([]*models.Post, error) {
	rows, err := r.db.Query(
		`SELECT id, title, content, author_first_name, author_last_name, created_at FROM posts ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *SQLitePostRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

func (r *SQLitePostRepository) Update(post *models.Post) error {
	res, err := r.db.Exec(
		`UPDATE posts SET title = ?, content = ?, author_first_name = ?, author_last_name = ? WHERE id = ?`,
		post.Title, post.Content, post.Author.FirstName, post.Author.LastName, post.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLitePostRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLitePostRepository) Ping() error {
	return r.db.Ping()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*models.Post, error) {
	var (
		post    models.Post
		created string
	)
	err := s.Scan(&post.ID, &post.Title, &post.Content, &post.Author.FirstName, &post.Author.LastName, &created)
	if err != nil {
		return nil, err
	}
	post.Created, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for post %s: %w", post.ID, err)
	}
	return &post, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
