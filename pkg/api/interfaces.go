// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/stgyboard/pkg/cache"
	"github.com/ssargent/stgyboard/pkg/stgy"
	"github.com/ssargent/stgyboard/pkg/storage"
)

// BoardStore defines the board storage operations used by the server
type BoardStore interface {
	Create(token string) (*storage.StoredBoard, error)
	Read(id ksuid.KSUID) (*storage.StoredBoard, error)
	Update(id ksuid.KSUID, token string) (*storage.StoredBoard, error)
	Delete(id ksuid.KSUID) error
	List() ([]storage.StoredBoard, error)
}

// BoardStoreCloser is a BoardStore that owns an open database
type BoardStoreCloser interface {
	BoardStore
	Close() error
}

// StorageFactory opens board storage
type StorageFactory interface {
	// OpenStorage opens the board database under dataDir
	OpenStorage(dataDir string, logger *slog.Logger) (BoardStoreCloser, error)
}

// BoardCodec defines the token operations used by the server
type BoardCodec interface {
	Encode(b *stgy.BoardData) (string, error)
	Decode(token string) (*stgy.BoardData, error)
	Inspect(token string) (*stgy.TokenInfo, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer runs the API server until ctx is cancelled
	StartServer(ctx context.Context, store BoardStore, tokenCache cache.TokenCache, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter logging to logger
	CreateServerStarter(logger *slog.Logger) ServerStarter
}
