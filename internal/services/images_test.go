package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"eventease/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageKey(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{name: "png", contentType: "image/png", wantExt: ".png"},
		{name: "webp upper case", contentType: "IMAGE/WEBP", wantExt: ".webp"},
		{name: "with parameters", contentType: "image/gif; charset=binary", wantExt: ".gif"},
		{name: "not an image", contentType: "text/plain", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := imageKey("events", "ev-1", domain.ImageUpload{ContentType: tt.contentType, Body: strings.NewReader("x")})
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, "events/ev-1/"), key)
			assert.True(t, strings.HasSuffix(key, tt.wantExt), key)
		})
	}

	_, err := imageKey("events", "ev-1", domain.ImageUpload{ContentType: "image/png"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreImage(t *testing.T) {
	ctx := context.Background()
	img := func() domain.ImageUpload {
		return domain.ImageUpload{ContentType: "image/png", Body: strings.NewReader("png")}
	}

	t.Run("records url", func(t *testing.T) {
		store := &fakeImageStore{}
		var recorded string
		url, err := storeImage(ctx, store, "venues", "v-1", img(), func(_ context.Context, u string) error {
			recorded = u
			return nil
		})
		require.NoError(t, err)
		require.Len(t, store.keys, 1)
		assert.Equal(t, "https://cdn.test/"+store.keys[0], url)
		assert.Equal(t, url, recorded)
		assert.Empty(t, store.deleted)
	})

	t.Run("removes blob when url update fails", func(t *testing.T) {
		store := &fakeImageStore{}
		updateErr := errors.New("db down")
		_, err := storeImage(ctx, store, "venues", "v-1", img(), func(context.Context, string) error {
			return updateErr
		})
		require.ErrorIs(t, err, updateErr)
		require.Len(t, store.keys, 1)
		assert.Equal(t, store.keys, store.deleted)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("bucket unavailable")
		store := &fakeImageStore{err: storeErr}
		_, err := storeImage(ctx, store, "venues", "v-1", img(), func(context.Context, string) error {
			t.Fatal("url must not be recorded")
			return nil
		})
		require.ErrorIs(t, err, storeErr)
	})
}
