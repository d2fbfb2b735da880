package repositories

import (
	"errors"

	"blogposts/app/models"
)

var (
	ErrNotFound = errors.New("record not found")
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create assigns the post its id and creation time and stores it.
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	// List returns every stored post in insertion order.
	List() ([]*models.Post, error)
	Count() (int, error)
	Update(post *models.Post) error
	Delete(id string) error
	Ping() error
}
