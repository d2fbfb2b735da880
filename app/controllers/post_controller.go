package controllers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"blogposts/app/models"
	"blogposts/app/services"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"
)

// maxBodyBytes caps the size of a post request body.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	feed        FeedOptions
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, feed FeedOptions) *PostController {
	return &PostController{
		postService: postService,
		feed:        feed,
	}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts()
	if err != nil {
		pc.sendError(w, err)
		return
	}

	views := make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, post.Render())
	}
	pc.sendJSON(w, http.StatusOK, views)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(mux.Vars(r)["id"])
	if err != nil {
		pc.sendError(w, err)
		return
	}

	body, err := json.Marshal(post.Render())
	if err != nil {
		pc.sendError(w, err)
		return
	}

	etag := entityTag(body)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && matchesETag(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(body, '\n'))
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodePostInput(w, r)
	if err != nil {
		pc.sendError(w, err)
		return
	}

	post, err := pc.postService.CreatePost(in)
	if err != nil {
		pc.sendError(w, err)
		return
	}

	w.Header().Set("Location", "/posts/"+post.ID)
	pc.sendJSON(w, http.StatusCreated, post.Render())
}

// Edit handles updating an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	in, err := decodePostInput(w, r)
	if err != nil {
		pc.sendError(w, err)
		return
	}

	if err := pc.postService.UpdatePost(mux.Vars(r)["id"], in); err != nil {
		pc.sendError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := pc.postService.DeletePost(mux.Vars(r)["id"]); err != nil {
		pc.sendError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health reports whether the store behind the service is reachable
func (pc *PostController) Health(w http.ResponseWriter, r *http.Request) {
	if err := pc.postService.Ping(); err != nil {
		log.Printf("health check failed: %v", err)
		pc.sendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	pc.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodePostInput reads a JSON post body. Unknown fields and trailing data
// are rejected.
func decodePostInput(w http.ResponseWriter, r *http.Request) (*models.PostInput, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var in models.PostInput
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, invalidBody(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, invalidBody(errors.New("body must contain a single JSON object"))
	}
	return &in, nil
}

func invalidBody(err error) error {
	return &services.ValidationError{Fields: []models.FieldError{{
		Field:   "body",
		Message: "malformed JSON: " + err.Error(),
	}}}
}

// entityTag derives a strong ETag from the response body
func entityTag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// Helper methods for consistent response handling

func (pc *PostController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// sendError maps the service error taxonomy onto HTTP statuses
func (pc *PostController) sendError(w http.ResponseWriter, err error) {
	var (
		verr *services.ValidationError
		nf   *services.NotFoundError
		perr *services.PersistenceError
	)
	switch {
	case errors.Is(err, errBodyTooLarge):
		pc.sendJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.As(err, &verr):
		pc.sendJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &nf):
		pc.sendJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	case errors.As(err, &perr):
		log.Printf("persistence error: %v", perr)
		pc.sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	default:
		log.Printf("unexpected error: %v", err)
		pc.sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
