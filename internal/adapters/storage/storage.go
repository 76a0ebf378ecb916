// Package storage implements domain.ImageStore on S3 and on the local filesystem.
package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"eventease/internal/domain"
)

// Config selects and configures an image store.
type Config struct {
	Provider string // "s3" or "local"

	// local
	Dir     string
	BaseURL string

	// s3
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// New builds the image store named by cfg.Provider. Unknown providers fall back to local disk.
func New(cfg Config, logger *slog.Logger) (domain.ImageStore, error) {
	switch strings.ToLower(cfg.Provider) {
	case "s3":
		s, err := NewS3Store(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local", "":
	default:
		logger.Warn("unknown image store provider, using local disk", "provider", cfg.Provider)
	}
	s, err := NewLocalStore(cfg.Dir, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// cleanKey rejects keys that could escape the store's namespace.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: invalid object key %q", domain.ErrInvalidInput, key)
	}
	return key, nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
