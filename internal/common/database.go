package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// A database stores one JSON document as a whole.
// There are no partial updates: Load reads everything, Save replaces everything
type Database interface {
	// Load decodes the document into v. Reports false if there is no document yet
	Load(ctx context.Context, v any) (bool, error)
	Save(ctx context.Context, v any) error
}

// Database backed by a single JSON file on disk
type FileDatabase struct {
	filename string
	mu       sync.Mutex
}

func NewFileDatabase(filename string) *FileDatabase {
	return &FileDatabase{filename: filepath.Clean(filename)}
}

func (db *FileDatabase) Load(_ context.Context, v any) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(db.filename), 0750); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", db.filename, err)
	}

	// #nosec G304 -- the file name comes from configuration
	data, err := os.ReadFile(db.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", db.filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", db.filename, err)
	}
	return true, nil
}

func (db *FileDatabase) Save(_ context.Context, v any) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", db.filename, err)
	}

	dir := filepath.Dir(db.filename)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(db.filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, db.filename); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, db.filename, err)
	}
	return nil
}

// Database that keeps the JSON document under one redis key
type RedisDatabase struct {
	redis *redis.Client
	key   string
}

func NewRedisDatabase(client *redis.Client, key string) *RedisDatabase {
	return &RedisDatabase{redis: client, key: key}
}

func (db *RedisDatabase) Load(ctx context.Context, v any) (bool, error) {
	data, err := db.redis.Get(ctx, db.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("RedisDatabase.Load %s: %w", db.key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("RedisDatabase.Load %s: %w", db.key, err)
	}
	return true, nil
}

func (db *RedisDatabase) Save(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("RedisDatabase.Save %s: %w", db.key, err)
	}
	if err := db.redis.Set(ctx, db.key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("RedisDatabase.Save %s: %w", db.key, err)
	}
	return nil
}
