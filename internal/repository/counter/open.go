package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/bedside-alarm/internal/device"
)

const (
	// KindFile selects FileRepository.
	KindFile = "file"
	// KindSQLite selects SQLiteRepository.
	KindSQLite = "sqlite"
)

// ErrUnknownKind is returned for an unsupported store kind.
var ErrUnknownKind = errors.New("unknown counter store kind")

// Store is a counter store that holds resources.
type Store interface {
	device.CounterStore
	Close() error
}

// Open creates the store selected by kind.
//
//nolint:ireturn // The caller only needs the capability, not the backend.
func Open(ctx context.Context, kind, path string) (Store, error) {
	switch kind {
	case KindFile, "":
		return NewFileRepository(path), nil
	case KindSQLite:
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}
