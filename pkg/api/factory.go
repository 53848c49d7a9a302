// Package api provides factory implementations for dependency injection
package api

import "context"

// DefaultRecordServiceFactory is the default implementation of RecordServiceFactory
type DefaultRecordServiceFactory struct{}

// NewRecordServiceFactory creates a new record service factory
func NewRecordServiceFactory() RecordServiceFactory {
	return &DefaultRecordServiceFactory{}
}

// CreateRecordService creates a new record service with the given config
func (f *DefaultRecordServiceFactory) CreateRecordService(archive IArchive, config ServiceConfig) (*RecordService, error) {
	return NewRecordService(archive, config)
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, service *RecordService, config ServerConfig) error {
	return StartServer(ctx, service, config)
}
