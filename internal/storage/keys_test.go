package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildObjectKey(t *testing.T) {
	id := uuid.MustParse("7f9c24e5-2f0b-4b3e-9d6a-111111111111")

	key := BuildObjectKey(models.AssetKindDownload, id, "pack.ZIP")
	assert.Equal(t, "downloads/7f9c24e5-2f0b-4b3e-9d6a-111111111111.zip", key)

	key = BuildObjectKey(models.AssetKindPreview, id, "noextension")
	assert.Equal(t, "previews/7f9c24e5-2f0b-4b3e-9d6a-111111111111.bin", key)
}

func TestValidateKindKey(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.AssetKind
		key     string
		wantErr error
	}{
		{"matching prefix", models.AssetKindPreview, "previews/a.mp4", nil},
		{"download under preview kind", models.AssetKindPreview, "downloads/x.zip", ErrKindMismatch},
		{"thumbnail under download kind", models.AssetKindDownload, "thumbnails/t.jpg", ErrKindMismatch},
		{"unknown kind", models.AssetKind("banner"), "banners/b.png", ErrInvalidKind},
		{"unprefixed key", models.AssetKindDownload, "x.zip", ErrKindMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKindKey(tt.kind, tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPublicKey(t *testing.T) {
	assert.True(t, PublicKey("previews/a.mp4"))
	assert.True(t, PublicKey("thumbnails/a.jpg"))
	assert.False(t, PublicKey("downloads/a.zip"))
	assert.False(t, PublicKey("other/a.txt"))
}
