package storage

import (
	"context"
	"sync"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps the document in process. Used in development and tests.
type MemoryBackend struct {
	mutex sync.Mutex
	doc   []byte

	LoadErr error
	SaveErr error
	Saves   int
}

func NewMemoryBackend(initial []byte) *MemoryBackend {
	return &MemoryBackend{
		doc: initial,
	}
}

func (b *MemoryBackend) Name() string {
	return "memory"
}

func (b *MemoryBackend) Load(_ context.Context) ([]byte, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	return append([]byte(nil), b.doc...), nil
}

func (b *MemoryBackend) Save(_ context.Context, doc []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.doc = append([]byte(nil), doc...)
	b.Saves++
	return nil
}

// Document returns the last saved document.
func (b *MemoryBackend) Document() []byte {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]byte(nil), b.doc...)
}
