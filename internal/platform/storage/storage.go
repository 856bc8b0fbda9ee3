// Package storage provides whole-document persistence with atomic
// load/replace semantics. Callers that read, modify and write a document must
// serialize that span themselves; backends only guarantee that a Replace is
// never observed half-written.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Load when the document has never been written.
var ErrNotExist = errors.New("storage: document does not exist")

// Document is a single named JSON document.
type Document interface {
	// Load returns the raw document body or ErrNotExist.
	Load(ctx context.Context) ([]byte, error)
	// Replace atomically swaps the stored body for data.
	Replace(ctx context.Context, data []byte) error
}
