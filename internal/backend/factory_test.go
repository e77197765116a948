package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"mongo", Config{Type: MongoBackend, MongoURI: "mongodb://localhost", MongoDatabase: "fintrack"}, false},
		{"mongo without uri", Config{Type: MongoBackend, MongoDatabase: "fintrack"}, true},
		{"unknown type", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "mongo", MongoURI: "mongodb://db", MongoDatabase: "ft"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != MongoBackend || cfg.MongoURI != "mongodb://db" || cfg.MongoDatabase != "ft" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "fintrack.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.Create(ctx, cfg)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if res.Publisher != nil {
				t.Fatal("publisher must be nil without AMQP_URL")
			}
			if err := res.Store.Ping(ctx); err != nil {
				t.Fatalf("Ping() error = %v", err)
			}
			if err := res.Cleanup(); err != nil {
				t.Fatalf("Cleanup() error = %v", err)
			}
		})
	}

	if _, err := f.Create(ctx, Config{Type: "bogus"}); err == nil {
		t.Fatal("expected error for invalid type")
	}
}
