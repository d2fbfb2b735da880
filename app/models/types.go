package models

import "time"

// Author is the composite author value. It is stored as-is and only
// rendered to a single string at the API boundary.
type Author struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Post represents a persisted blog post.
type Post struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Author  Author    `json:"author"`
	Created time.Time `json:"created"`
}

// PostView is the rendered form of a Post returned to HTTP clients.
type PostView struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
	Created time.Time `json:"created"`
}

// AuthorInput is the author part of a request body.
type AuthorInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// PostInput is the request body accepted when creating or updating a post.
// Created is accepted so clients can send back a record they read, but it
// is never applied.
type PostInput struct {
	ID      string       `json:"id,omitempty"`
	Title   string       `json:"title" validate:"required,max=200"`
	Content string       `json:"content" validate:"required"`
	Author  *AuthorInput `json:"author" validate:"required"`
	Created *time.Time   `json:"created,omitempty"`
}

// FieldError describes one rejected field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
