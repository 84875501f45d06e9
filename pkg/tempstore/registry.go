// Package tempstore keeps uploaded files for the lifetime of a session.
// Storage is in-memory and advisory; nothing survives a restart.
package tempstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ChunkSize is the largest value written under a single key. In-memory
// badger rejects values above 1 MiB, so files are split.
const ChunkSize = 512 << 10

// ErrNotFound is returned by Load for unknown tokens
var ErrNotFound = errors.New("temporary file not found")

// Key layout: the token holds the chunk count, chunks live under a
// separate prefix so Len only sees tokens.
var (
	tokenPrefix = []byte("temp_")
	chunkPrefix = []byte("chunk/")
)

// Registry stores files keyed by a timestamp and file name token
type Registry struct {
	db  *badger.DB
	now func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithClock overrides the clock used to build tokens
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Open creates an empty in-memory registry
func Open(opts ...Option) (*Registry, error) {
	options := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary registry: %w", err)
	}

	r := &Registry{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Token builds the key a file is stored under
func Token(at time.Time, name string) string {
	return fmt.Sprintf("temp_%d_%s", at.UnixMilli(), name)
}

func chunkKey(token string, index int) []byte {
	return []byte(fmt.Sprintf("%s%s/%06d", chunkPrefix, token, index))
}

// Store saves data and returns its token
func (r *Registry) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token := Token(r.now(), name)
	chunks := (len(data) + ChunkSize - 1) / ChunkSize

	// A write batch splits large uploads over several transactions
	wb := r.db.NewWriteBatch()
	defer wb.Cancel()

	for i := 0; i < chunks; i++ {
		end := min((i+1)*ChunkSize, len(data))
		if err := wb.Set(chunkKey(token, i), data[i*ChunkSize:end]); err != nil {
			return "", storeError(name, len(data), err)
		}
	}

	count := make([]byte, 8)
	binary.BigEndian.PutUint64(count, uint64(chunks))
	if err := wb.Set([]byte(token), count); err != nil {
		return "", storeError(name, len(data), err)
	}

	if err := wb.Flush(); err != nil {
		return "", storeError(name, len(data), err)
	}
	return token, nil
}

// storeError describes a failed Store. Badger appends a dump of the
// offending value after the first line; only the first line is kept.
func storeError(name string, size int, err error) error {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return fmt.Errorf("failed to store %s (%d bytes): %s", name, size, strings.TrimSpace(msg[:i]))
	}
	return fmt.Errorf("failed to store %s (%d bytes): %w", name, size, err)
}

// Load returns the data stored under token
func (r *Registry) Load(ctx context.Context, token string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(token))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		count, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if len(count) != 8 {
			return fmt.Errorf("corrupt entry %s", token)
		}

		chunks := int(binary.BigEndian.Uint64(count))
		for i := 0; i < chunks; i++ {
			chunk, err := txn.Get(chunkKey(token, i))
			if err != nil {
				return fmt.Errorf("missing chunk %d of %s: %w", i, token, err)
			}
			if err := chunk.Value(func(val []byte) error {
				buf.Write(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Len returns the number of stored files
func (r *Registry) Len() (int, error) {
	n := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = tokenPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count temporary files: %w", err)
	}
	return n, nil
}

// ClearAll removes every stored file
func (r *Registry) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear temporary registry: %w", err)
	}
	return nil
}

// Close releases the registry
func (r *Registry) Close() error {
	return r.db.Close()
}
