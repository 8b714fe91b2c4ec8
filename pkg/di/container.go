// Package di provides dependency injection container
package di

import (
	"log/slog"

	"github.com/ssargent/stgyboard/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	storageFactory api.StorageFactory
	serverFactory  api.ServerFactory
	logger         *slog.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		storageFactory: api.NewStorageFactory(),
		serverFactory:  api.NewServerFactory(),
		logger:         slog.Default(),
	}
}

// GetStorageFactory returns the storage factory
func (c *Container) GetStorageFactory() api.StorageFactory {
	return c.storageFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// Logger returns the application logger
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// SetLogger replaces the application logger
func (c *Container) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// SetStorageFactory allows overriding the storage factory (for testing)
func (c *Container) SetStorageFactory(factory api.StorageFactory) {
	c.storageFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
