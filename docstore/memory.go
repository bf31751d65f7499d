package docstore

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lifeline/training-engine/training"
)

// Memory is an in-memory DocumentStore for testing.
type Memory struct {
	mu    sync.RWMutex
	files map[training.DocumentRef][]byte
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{files: make(map[training.DocumentRef][]byte)}
}

// Store keeps the document bytes in memory and returns a reference.
func (m *Memory) Store(ctx context.Context, filename string, r io.Reader) (training.DocumentRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	ref := training.DocumentRef(uuid.NewString() + ext)

	m.mu.Lock()
	m.files[ref] = data
	m.mu.Unlock()
	return ref, nil
}

// Open returns the stored bytes.
func (m *Memory) Open(ctx context.Context, ref training.DocumentRef) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.files[ref]
	m.mu.RUnlock()
	if !ok {
		return nil, &training.NotFoundError{Kind: "document", ID: string(ref)}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// URLFor returns the serving path for a stored reference.
func (m *Memory) URLFor(ref training.DocumentRef) string {
	return "/api/documents/" + string(ref)
}
