// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ssargent/stgyboard/pkg/cache"
	"github.com/ssargent/stgyboard/pkg/storage"
)

// boardsDir is the pebble directory below the configured data dir
const boardsDir = "boards"

// DefaultStorageFactory is the default implementation of StorageFactory
type DefaultStorageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &DefaultStorageFactory{}
}

// OpenStorage opens pebble board storage under dataDir, creating it if needed
func (f *DefaultStorageFactory) OpenStorage(dataDir string, logger *slog.Logger) (BoardStoreCloser, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := storage.NewBoardStorage(filepath.Join(dataDir, boardsDir), storage.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter(logger *slog.Logger) ServerStarter {
	return &DefaultServerStarter{logger: logger}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct {
	logger *slog.Logger
}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	store BoardStore,
	tokenCache cache.TokenCache,
	config ServerConfig,
) error {
	return StartServer(ctx, store, tokenCache, config, s.logger)
}
