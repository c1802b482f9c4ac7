package stores

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/core/store"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 100
)

// FileWatcher reports changes to the collection files of a FileStore
// directory. Bursts of writes to one file are debounced into a single event.
type FileWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	mu          sync.Mutex
	subscribers map[string][]chan store.Event // collection ("*" for all) -> channels
	debounce    map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileWatcher starts watching dir. The directory is created if missing.
func NewFileWatcher(dir string) (*FileWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		dir:         dir,
		watcher:     watcher,
		logger:      logging.Component("file-watcher"),
		subscribers: make(map[string][]chan store.Event),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Watch returns a channel receiving an event whenever collection changes on
// disk. Use "*" or "" to receive every collection. The channel is closed when
// ctx is done or the watcher is closed.
func (fw *FileWatcher) Watch(ctx context.Context, collection string) (<-chan store.Event, error) {
	if collection == "" {
		collection = "*"
	}
	ch := make(chan store.Event, eventBufferSize)

	fw.mu.Lock()
	fw.subscribers[collection] = append(fw.subscribers[collection], ch)
	fw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			fw.unsubscribe(collection, ch)
		case <-fw.ctx.Done():
		}
	}()

	return ch, nil
}

// Close stops watching and closes every subscriber channel.
func (fw *FileWatcher) Close() error {
	fw.cancel()

	fw.mu.Lock()
	for _, timer := range fw.debounce {
		timer.Stop()
	}
	for _, subs := range fw.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	fw.subscribers = make(map[string][]chan store.Event)
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) unsubscribe(collection string, ch chan store.Event) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	subs := fw.subscribers[collection]
	for i, sub := range subs {
		if sub == ch {
			fw.subscribers[collection] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(fw.subscribers[collection]) == 0 {
		delete(fw.subscribers, collection)
	}
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn().Err(err).Str("dir", fw.dir).Msg("watch error")
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	collection, ok := collectionFromFile(event.Name)
	if !ok {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if timer, exists := fw.debounce[collection]; exists {
		timer.Stop()
	}
	fw.debounce[collection] = time.AfterFunc(debounceDelay, func() {
		fw.notify(collection)
	})
}

func (fw *FileWatcher) notify(collection string) {
	event := store.Event{Collection: collection}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, key := range []string{collection, "*"} {
		for _, ch := range fw.subscribers[key] {
			select {
			case ch <- event:
			default:
				// subscriber is behind; it will reload on the next event
			}
		}
	}
	delete(fw.debounce, collection)
}

// collectionFromFile maps "<dir>/deals.json" to "deals". Temp and lock files
// are ignored.
func collectionFromFile(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.HasPrefix(name, ".") || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}
