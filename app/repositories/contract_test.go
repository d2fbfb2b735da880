package repositories

import (
	"sync"
	"testing"
	"time"

	"blogposts/app/models"

	"github.com/Pallinder/go-randomdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPost() *models.Post {
	return &models.Post{
		Title:   randomdata.Title(randomdata.RandomGender),
		Content: randomdata.Paragraph(),
		Author: models.Author{
			FirstName: randomdata.FirstName(randomdata.RandomGender),
			LastName:  randomdata.LastName(),
		},
	}
}

// runPostRepositoryContract exercises the behaviour every PostRepository
// implementation must share. newRepo must return an empty repository.
func runPostRepositoryContract(t *testing.T, newRepo func(t *testing.T) PostRepository) {
	t.Run("create assigns id and created", func(t *testing.T) {
		repo := newRepo(t)
		post := randomPost()

		require.NoError(t, repo.Create(post))
		assert.NotEmpty(t, post.ID)
		assert.False(t, post.Created.IsZero())

		got, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Title, got.Title)
		assert.Equal(t, post.Content, got.Content)
		assert.Equal(t, post.Author, got.Author)
		assert.True(t, post.Created.Equal(got.Created))
	})

	t.Run("ids are unique", func(t *testing.T) {
		repo := newRepo(t)
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			post := randomPost()
			require.NoError(t, repo.Create(post))
			assert.False(t, seen[post.ID], "duplicate id %s", post.ID)
			seen[post.ID] = true
		}
	})

	t.Run("concurrent creates", func(t *testing.T) {
		repo := newRepo(t)
		const n = 50

		var wg sync.WaitGroup
		ids := make([]string, n)
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				post := randomPost()
				errs[i] = repo.Create(post)
				ids[i] = post.ID
			}(i)
		}
		wg.Wait()

		unique := map[string]bool{}
		for i := range ids {
			require.NoError(t, errs[i])
			unique[ids[i]] = true
		}
		assert.Len(t, unique, n)

		posts, err := repo.List()
		require.NoError(t, err)
		assert.Len(t, posts, n)
		for _, post := range posts {
			assert.True(t, unique[post.ID], "unexpected id %s", post.ID)
		}

		count, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, n, count)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		repo := newRepo(t)
		var ids []string
		for i := 0; i < 10; i++ {
			post := randomPost()
			require.NoError(t, repo.Create(post))
			ids = append(ids, post.ID)
		}

		posts, err := repo.List()
		require.NoError(t, err)
		require.Len(t, posts, len(ids))
		for i, post := range posts {
			assert.Equal(t, ids[i], post.ID)
		}

		count, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, len(ids), count)
	})

	t.Run("list on empty repository", func(t *testing.T) {
		repo := newRepo(t)
		posts, err := repo.List()
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("update keeps id and created", func(t *testing.T) {
		repo := newRepo(t)
		post := randomPost()
		require.NoError(t, repo.Create(post))
		created := post.Created

		changed := &models.Post{
			ID:      post.ID,
			Title:   "Updated Title",
			Content: "Updated content",
			Author:  models.Author{FirstName: "Rudyard", LastName: "Kipling"},
			Created: time.Now().Add(time.Hour),
		}
		require.NoError(t, repo.Update(changed))

		got, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", got.Title)
		assert.Equal(t, "Updated content", got.Content)
		assert.Equal(t, "Rudyard Kipling", got.Author.String())
		assert.True(t, created.Equal(got.Created))
	})

	t.Run("update missing post", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Update(&models.Post{ID: "does-not-exist", Title: "t", Content: "c"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete removes post and order entry", func(t *testing.T) {
		repo := newRepo(t)
		first, second := randomPost(), randomPost()
		require.NoError(t, repo.Create(first))
		require.NoError(t, repo.Create(second))

		require.NoError(t, repo.Delete(first.ID))

		_, err := repo.GetByID(first.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		posts, err := repo.List()
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, second.ID, posts[0].ID)
	})

	t.Run("delete missing post", func(t *testing.T) {
		repo := newRepo(t)
		assert.ErrorIs(t, repo.Delete("does-not-exist"), ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping())
	})
}
