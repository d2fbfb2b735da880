package repositories

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"blogposts/app/models"
)

const (
	// Key prefixes for the post documents and their insertion-order index
	PostKeyPrefix   = "post:"
	PostOrderPrefix = "post_order:"

	// Sequence key backing the insertion order
	PostSeqKey = "seq:post"
)

// postRecord is the document stored for each post. Seq locates the
// post's entry in the order index.
type postRecord struct {
	models.Post
	Seq uint64 `json:"seq"`
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

// orderKey encodes seq big-endian so that lexical key order equals
// numeric order.
func orderKey(seq uint64) []byte {
	key := make([]byte, len(PostOrderPrefix)+8)
	copy(key, PostOrderPrefix)
	binary.BigEndian.PutUint64(key[len(PostOrderPrefix):], seq)
	return key
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
