package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	mediaout "tdrill/internal/modules/media/port/out"
)

// FileDisplayCache writes imported media under a cache directory and
// remembers the path per location for the life of the process.
type FileDisplayCache struct {
	dir string

	mu    sync.Mutex
	paths map[string]string
}

func NewFileDisplayCache(dir string) mediaout.DisplayCache {
	return &FileDisplayCache{dir: dir, paths: map[string]string{}}
}

func (c *FileDisplayCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.paths[key]
	if !ok {
		return "", false
	}
	if _, err := os.Stat(p); err != nil {
		delete(c.paths, key)
		return "", false
	}
	return p, true
}

func (c *FileDisplayCache) Materialize(_ context.Context, key, name string, data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.paths[key]; ok {
		return p, nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	p := filepath.Join(c.dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write cached media: %w", err)
	}
	c.paths[key] = p
	return p, nil
}

func (c *FileDisplayCache) Evict(key string) error {
	c.mu.Lock()
	p, ok := c.paths[key]
	delete(c.paths, key)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cached media: %w", err)
	}
	return nil
}
