// Package backend builds the persistence and messaging stack selected by
// configuration.
package backend

import (
	"context"

	"fintrack/internal/services"
	"fintrack/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is a ready store plus the optional sync publisher.
type Result struct {
	Store store.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Optional AMQP publisher
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MongoBackend  BackendType = "mongo"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MongoBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
