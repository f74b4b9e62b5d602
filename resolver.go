package signet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// KeyResolver produces the signing/verifying key for one call. Static
// values are the trivial case ([StaticKey]); late-bound lookups implement
// the interface or wrap a closure in [KeyResolverFunc].
type KeyResolver interface {
	Resolve(opts *Options) (any, error)
}

// KeyResolverFunc adapts a closure into a [KeyResolver].
type KeyResolverFunc func(opts *Options) (any, error)

func (f KeyResolverFunc) Resolve(opts *Options) (any, error) {
	return f(opts)
}

// StaticKey is a fixed secret. It resolves to []byte, the key shape the
// HMAC algorithm family expects.
type StaticKey []byte

func (k StaticKey) Resolve(*Options) (any, error) {
	if len(k) == 0 {
		return nil, ErrNoResolver
	}
	return []byte(k), nil
}

// FileKeyResolver reads key material from a file and hot-reloads it when
// the file changes, so secrets can be rotated without restarting the
// process. The watcher observes the parent directory because secret
// managers typically replace the file atomically via rename.
type FileKeyResolver struct {
	path    string
	watcher *fsnotify.Watcher

	mu  sync.RWMutex
	key []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewFileKeyResolver loads the key at path and starts watching for
// changes. Callers must Close the resolver when done.
func NewFileKeyResolver(path string) (*FileKeyResolver, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("key file %s is empty", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch key file: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch key file: %w", err)
	}

	r := &FileKeyResolver{
		path:    path,
		watcher: watcher,
		key:     key,
		done:    make(chan struct{}),
	}

	go r.run()

	return r, nil
}

func (r *FileKeyResolver) run() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Name != r.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			r.reload()
		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		case <-r.done:
			return
		}
	}
}

func (r *FileKeyResolver) reload() {
	key, err := os.ReadFile(r.path)
	if err != nil || len(key) == 0 {
		// Keep serving the previous key; a half-written or briefly absent
		// file must not take verification down.
		return
	}
	r.mu.Lock()
	r.key = key
	r.mu.Unlock()
}

func (r *FileKeyResolver) Resolve(*Options) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.key) == 0 {
		return nil, ErrNoResolver
	}
	return r.key, nil
}

// Close stops the file watcher.
func (r *FileKeyResolver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.watcher.Close()
	})
	return err
}
