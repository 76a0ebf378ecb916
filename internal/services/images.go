package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"eventease/internal/domain"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// imageKey builds the storage key for an uploaded image, e.g. "venues/<id>/<uuid>.png".
func imageKey(kind, id string, img domain.ImageUpload) (string, error) {
	if img.Body == nil {
		return "", fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(img.ContentType, ";")[0]))
	ext, ok := imageExtensions[ct]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, img.ContentType)
	}
	return path.Join(kind, id, uuid.NewString()+ext), nil
}

// storeImage uploads img under kind/id and records its URL with setURL.
// The stored blob is removed again when setURL fails.
func storeImage(ctx context.Context, store domain.ImageStore, kind, id string, img domain.ImageUpload, setURL func(context.Context, string) error) (string, error) {
	key, err := imageKey(kind, id, img)
	if err != nil {
		return "", err
	}
	url, err := store.Put(ctx, key, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	if err := setURL(ctx, url); err != nil {
		_ = store.Delete(ctx, key)
		return "", fmt.Errorf("set image url: %w", err)
	}
	return url, nil
}
