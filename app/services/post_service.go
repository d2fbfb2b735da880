package services

import (
	"errors"

	"blogposts/app/models"
	"blogposts/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// ListPosts returns the whole collection in insertion order
func (s *PostService) ListPosts() ([]*models.Post, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, &PersistenceError{Op: "list posts", Err: err}
	}
	return posts, nil
}

// CountPosts returns the size of the collection
func (s *PostService) CountPosts() (int, error) {
	n, err := s.postRepo.Count()
	if err != nil {
		return 0, &PersistenceError{Op: "count posts", Err: err}
	}
	return n, nil
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get post", Err: err}
	}
	return post, nil
}

// CreatePost validates the input and stores it as a new post
func (s *PostService) CreatePost(in *models.PostInput) (*models.Post, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := in.ToPost()
	post.BeforeCreate()

	if err := s.postRepo.Create(post); err != nil {
		return nil, &PersistenceError{Op: "create post", Err: err}
	}
	return post, nil
}

// UpdatePost replaces the title, content and author of the post addressed
// by id. The creation time is never changed.
func (s *PostService) UpdatePost(id string, in *models.PostInput) error {
	if in != nil {
		in.Normalize()
		if in.ID != "" && in.ID != id {
			return &ValidationError{Fields: []models.FieldError{{
				Field:   "id",
				Message: "must match the id in the request path",
			}}}
		}
	}
	if err := validateInput(in); err != nil {
		return err
	}

	existing, err := s.GetPost(id)
	if err != nil {
		return err
	}
	existing.Apply(in)

	err = s.postRepo.Update(existing)
	if errors.Is(err, repositories.ErrNotFound) {
		// deleted between the lookup and the write
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return &PersistenceError{Op: "update post", Err: err}
	}
	return nil
}

// DeletePost removes the post. Deleting a post that does not exist is not
// an error.
func (s *PostService) DeletePost(id string) error {
	err := s.postRepo.Delete(id)
	if err == nil || errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return &PersistenceError{Op: "delete post", Err: err}
}

// Ping checks that the store is reachable
func (s *PostService) Ping() error {
	if err := s.postRepo.Ping(); err != nil {
		return &PersistenceError{Op: "reach store", Err: err}
	}
	return nil
}

// validateInput normalizes and validates a request body
func validateInput(in *models.PostInput) error {
	if in == nil {
		return &ValidationError{Fields: []models.FieldError{{Field: "body", Message: "is required"}}}
	}
	in.Normalize()
	if violations := in.Validate(); len(violations) > 0 {
		return &ValidationError{Fields: violations}
	}
	return nil
}
