package repositories

import (
	"errors"
	"fmt"

	"blogposts/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// seqBandwidth is how many sequence numbers are leased from badger at once.
const seqBandwidth = 100

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) (*BadgerPostRepository, error) {
	seq, err := db.GetSequence([]byte(PostSeqKey), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to lease post sequence: %w", err)
	}
	return &BadgerPostRepository{db: db, seq: seq}, nil
}

// Close returns the unused part of the leased sequence.
func (r *BadgerPostRepository) Close() error {
	return r.seq.Release()
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	seq, err := r.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to get next sequence: %w", err)
	}

	post.ID = uuid.NewString()
	post.BeforeCreate()

	data, err := marshalEntity(postRecord{Post: *post, Seq: seq})
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		return txn.Set(orderKey(seq), []byte(post.ID))
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id string) (*models.Post, error) {
	var rec postRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, id, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec.Post, nil
}

// List retrieves every post in insertion order
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostOrderPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var rec postRecord
			err = getRecord(txn, string(id), &rec)
			if errors.Is(err, ErrNotFound) {
				// index entry without a document, nothing to show
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load post %s: %w", id, err)
			}
			post := rec.Post
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of stored posts without loading them
func (r *BadgerPostRepository) Count() (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Update replaces the mutable fields of an existing post. The stored id,
// creation time and order position are kept.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var rec postRecord
		if err := getRecord(txn, post.ID, &rec); err != nil {
			return err
		}

		rec.Title = post.Title
		rec.Content = post.Content
		rec.Author = post.Author
		post.Created = rec.Created

		data, err := marshalEntity(rec)
		if err != nil {
			return err
		}
		return txn.Set(postKey(rec.ID), data)
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var rec postRecord
		if err := getRecord(txn, id, &rec); err != nil {
			return err
		}
		if err := txn.Delete(orderKey(rec.Seq)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
}

// Ping reports whether the database is still usable.
func (r *BadgerPostRepository) Ping() error {
	if r.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func getRecord(txn *badger.Txn, id string, rec *postRecord) error {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, rec)
	})
}
