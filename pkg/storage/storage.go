// Package storage archives canonical record lines in a pebble database,
// grouped by schema and keyed by time-ordered ksuids.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

const (
	keySep = '/'
	idLen  = 20
)

var (
	// ErrRecordNotFound is returned when no line is stored under an id
	ErrRecordNotFound = errors.New("record not found")

	// ErrClosed is returned by operations on a closed archive
	ErrClosed = errors.New("archive is closed")
)

// Entry is one archived line
type Entry struct {
	ID   ksuid.KSUID
	Line string
}

// Archive stores record lines per schema. Keys are the schema name, a
// separator byte and the 20 byte ksuid, so a schema's lines iterate in
// insertion order.
type Archive struct {
	db *pebble.DB

	mu     sync.RWMutex
	lastID ksuid.KSUID
	closed bool
}

// OpenArchive opens or creates an archive in dir
func OpenArchive(dir string) (*Archive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

func validSchema(schema string) error {
	if schema == "" {
		return errors.New("schema name is required")
	}
	if strings.IndexByte(schema, keySep) >= 0 {
		return fmt.Errorf("schema name %q must not contain %q", schema, keySep)
	}
	return nil
}

func recordKey(schema string, id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(schema)+1+idLen)
	key = append(key, schema...)
	key = append(key, keySep)
	return append(key, id.Bytes()...)
}

// schemaBounds returns the key range holding every line of schema
func schemaBounds(schema string) (lower, upper []byte) {
	lower = append([]byte(schema), keySep)
	upper = append([]byte(schema), keySep+1)
	return lower, upper
}

// nextID returns a ksuid greater than every id handed out before
func (a *Archive) nextID() ksuid.KSUID {
	id := ksuid.New()
	if ksuid.Compare(id, a.lastID) <= 0 {
		id = a.lastID.Next()
	}
	a.lastID = id
	return id
}

// Append stores lines under schema in one batch and returns their ids
func (a *Archive) Append(schema string, lines []string) ([]ksuid.KSUID, error) {
	if err := validSchema(schema); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	ids := make([]ksuid.KSUID, len(lines))
	for i, line := range lines {
		ids[i] = a.nextID()
		if err := batch.Set(recordKey(schema, ids[i]), []byte(line), nil); err != nil {
			return nil, fmt.Errorf("failed to stage line %d: %w", i+1, err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to commit lines: %w", err)
	}
	return ids, nil
}

// Get returns the line stored under id
func (a *Archive) Get(schema string, id ksuid.KSUID) (string, error) {
	if err := validSchema(schema); err != nil {
		return "", err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return "", ErrClosed
	}

	data, closer, err := a.db.Get(recordKey(schema, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", ErrRecordNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read record: %w", err)
	}
	defer closer.Close()

	return string(data), nil
}

// Delete removes the line stored under id
func (a *Archive) Delete(schema string, id ksuid.KSUID) error {
	if _, err := a.Get(schema, id); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if err := a.db.Delete(recordKey(schema, id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Scan returns every line of schema in insertion order
func (a *Archive) Scan(schema string) ([]Entry, error) {
	var entries []Entry
	err := a.each(schema, func(key, value []byte) error {
		id, err := ksuid.FromBytes(key[len(key)-idLen:])
		if err != nil {
			return fmt.Errorf("corrupt key %q: %w", key, err)
		}
		entries = append(entries, Entry{ID: id, Line: string(value)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of lines stored under schema
func (a *Archive) Count(schema string) (int, error) {
	n := 0
	err := a.each(schema, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

func (a *Archive) each(schema string, fn func(key, value []byte) error) error {
	if err := validSchema(schema); err != nil {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	lower, upper := schemaBounds(schema)
	iter, err := a.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			iter.Close()
			return err
		}
	}
	if err := iter.Close(); err != nil {
		return fmt.Errorf("failed to iterate records: %w", err)
	}
	return nil
}

// Close flushes and closes the database
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

// ParseID parses the string form of a record id
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("invalid record id %q: %w", s, err)
	}
	return id, nil
}
