package zk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"zkhunt/internal/ports"
	"zkhunt/internal/proof"
)

var ErrNoKey = errors.New("no verification key configured")

// FileKeys serves verification keys from disk. Each file is read once.
type FileKeys struct {
	paths map[proof.Kind]string

	mu    sync.Mutex
	cache map[proof.Kind][]byte
}

var _ ports.KeySource = (*FileKeys)(nil)

func NewFileKeys(movePath, searchPath string) *FileKeys {
	return &FileKeys{
		paths: map[proof.Kind]string{
			proof.KindJungleMove:     movePath,
			proof.KindSearchResponse: searchPath,
		},
		cache: make(map[proof.Kind][]byte),
	}
}

func (f *FileKeys) VerificationKey(ctx context.Context, kind proof.Kind) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vk, ok := f.cache[kind]; ok {
		return vk, nil
	}

	path := f.paths[kind]
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, kind)
	}
	vk, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s key %s: %w", kind, path, err)
	}
	f.cache[kind] = vk
	return vk, nil
}
