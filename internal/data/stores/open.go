package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/core/store"
	"github.com/colonyops/runway/internal/data/db"
	"github.com/colonyops/runway/internal/data/supabase"
)

// Kind names a storage backend.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindFile     Kind = "file"
	KindSQLite   Kind = "sqlite"
	KindSupabase Kind = "supabase"
)

// Kinds lists the supported backends.
var Kinds = []Kind{KindMemory, KindFile, KindSQLite, KindSupabase}

// Options selects and configures a backend.
type Options struct {
	Kind     Kind
	DataDir  string
	SQLite   db.OpenOptions
	Supabase supabase.Config
}

// Backend holds the shared resources of one storage backend. Collections are
// opened from it with Open.
type Backend struct {
	kind    Kind
	dir     string
	db      *db.DB
	client  *supabase.Client
	watcher *FileWatcher
}

// OpenBackend connects to the backend described by opts.
func OpenBackend(opts Options) (*Backend, error) {
	b := &Backend{kind: opts.Kind, dir: opts.DataDir}

	switch opts.Kind {
	case KindMemory, KindFile:
	case KindSQLite:
		database, err := db.Open(opts.DataDir, opts.SQLite)
		if err != nil && IsCorruptionError(err) {
			log.Warn().Err(err).Str("dir", opts.DataDir).Msg("database corrupt, moving it aside")
			if rerr := RecoverFromCorruption(opts.DataDir); rerr != nil {
				return nil, errors.Join(err, rerr)
			}
			database, err = db.Open(opts.DataDir, opts.SQLite)
		}
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		b.db = database
	case KindSupabase:
		client, err := supabase.NewClient(opts.Supabase)
		if err != nil {
			return nil, err
		}
		b.client = client
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Kind)
	}

	return b, nil
}

// Kind returns the backend kind.
func (b *Backend) Kind() Kind {
	return b.kind
}

// Supabase returns the Supabase client, or nil for other backends.
func (b *Backend) Supabase() *supabase.Client {
	return b.client
}

// Notifications returns a durable notification store when the backend has
// one, otherwise nil.
func (b *Backend) Notifications() notify.Store {
	if b.db == nil {
		return nil
	}
	return NewNotifyStore(b.db)
}

// Watch reports external changes to file-backed collections. Other backends
// return a nil channel, which never delivers.
func (b *Backend) Watch(ctx context.Context) (<-chan store.Event, error) {
	if b.kind != KindFile {
		return nil, nil
	}
	if b.watcher == nil {
		w, err := NewFileWatcher(b.dir)
		if err != nil {
			return nil, fmt.Errorf("watch data dir: %w", err)
		}
		b.watcher = w
	}
	return b.watcher.Watch(ctx, "*")
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	var errs []error
	if b.watcher != nil {
		errs = append(errs, b.watcher.Close())
	}
	if b.db != nil {
		errs = append(errs, b.db.Close())
	}
	return errors.Join(errs...)
}

// Open returns the store for collection on backend b. order is only used by
// the Supabase backend; see supabase.NewStore.
func Open[T store.Entity](b *Backend, collection, order string) (store.Store[T], error) {
	switch b.kind {
	case KindMemory:
		return NewMemoryStore[T](), nil
	case KindFile:
		s, err := NewFileStore[T](b.dir, collection)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindSQLite:
		return NewSQLiteStore[T](b.db, collection), nil
	case KindSupabase:
		return supabase.NewStore[T](b.client, collection, order), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", b.kind)
	}
}
