// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/csvmap/pkg/storage"
)

// IArchive defines the archive operations the record service depends on
type IArchive interface {
	Append(schema string, lines []string) ([]ksuid.KSUID, error)
	Get(schema string, id ksuid.KSUID) (string, error)
	Delete(schema string, id ksuid.KSUID) error
	Scan(schema string) ([]storage.Entry, error)
	Count(schema string) (int, error)
}

// RecordServiceFactory creates record services
type RecordServiceFactory interface {
	// CreateRecordService creates a record service over archive
	CreateRecordService(archive IArchive, config ServiceConfig) (*RecordService, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, service *RecordService, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
