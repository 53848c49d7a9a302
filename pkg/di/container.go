// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/csvmap/pkg/api" //nolint:depguard
	"github.com/ssargent/csvmap/pkg/storage"
)

// ArchiveOpener opens the record archive in a data directory
type ArchiveOpener func(dir string) (*storage.Archive, error)

// Container holds all the dependencies for the application
type Container struct {
	recordServiceFactory api.RecordServiceFactory
	serverFactory        api.ServerFactory
	archiveOpener        ArchiveOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		recordServiceFactory: api.NewRecordServiceFactory(),
		serverFactory:        api.NewServerFactory(),
		archiveOpener:        storage.OpenArchive,
	}
}

// GetRecordServiceFactory returns the record service factory
func (c *Container) GetRecordServiceFactory() api.RecordServiceFactory {
	return c.recordServiceFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// GetArchiveOpener returns the archive opener
func (c *Container) GetArchiveOpener() ArchiveOpener {
	return c.archiveOpener
}

// SetRecordServiceFactory allows overriding the record service factory (for testing)
func (c *Container) SetRecordServiceFactory(factory api.RecordServiceFactory) {
	c.recordServiceFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// SetArchiveOpener allows overriding how the archive is opened (for testing)
func (c *Container) SetArchiveOpener(opener ArchiveOpener) {
	c.archiveOpener = opener
}
