package routes

import (
	"testing"

	"blogposts/app/controllers"
	"blogposts/app/models"
	"blogposts/app/repositories"
	"blogposts/app/services"

	"github.com/Pallinder/go-randomdata"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// testEnv is a router backed by an in-memory badger store.
type testEnv struct {
	router  *mux.Router
	service *services.PostService
	repo    *repositories.BadgerPostRepository
	store   *repositories.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	store, err := repositories.OpenStore("", true)
	require.NoError(t, err)
	repo, err := repositories.NewBadgerPostRepository(store.DB())
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		store.Close()
	})

	service := services.NewPostService(repo)
	controller := controllers.NewPostController(service, controllers.FeedOptions{
		Title:   "Test Blog",
		BaseURL: "http://blog.test",
	})

	return &testEnv{
		router:  SetupRoutes(controller),
		service: service,
		repo:    repo,
		store:   store,
	}
}

// seedPosts inserts n posts with placeholder data.
func seedPosts(t *testing.T, service *services.PostService, n int) []*models.Post {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		post, err := service.CreatePost(generatePostInput())
		require.NoError(t, err)
		posts = append(posts, post)
	}
	return posts
}

func generatePostInput() *models.PostInput {
	titles := []string{"Manhattan", "Queens", "Brooklyn", "Bronx", "Staten Island"}
	return &models.PostInput{
		Title:   randomdata.StringSample(titles...),
		Content: randomdata.Paragraph(),
		Author: &models.AuthorInput{
			FirstName: randomdata.FirstName(randomdata.RandomGender),
			LastName:  randomdata.LastName(),
		},
	}
}
