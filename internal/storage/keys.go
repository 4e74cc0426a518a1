package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sceneyard/sceneyard/internal/models"
)

var (
	ErrInvalidKind  = errors.New("invalid asset kind")
	ErrKindMismatch = errors.New("object key does not match asset kind")
)

// KindPrefix returns the key namespace for an asset kind ("downloads/").
func KindPrefix(kind models.AssetKind) string {
	return string(kind) + "s/"
}

// BuildObjectKey derives the storage key for a fresh asset:
// {kind}s/{assetID}{ext}, extension taken from the uploaded filename.
func BuildObjectKey(kind models.AssetKind, assetID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s%s%s", KindPrefix(kind), assetID, ext)
}

// ValidateKindKey verifies that an existing key lives under the namespace of
// the requested kind, so a caller-supplied key can never overwrite an object
// of a different kind.
func ValidateKindKey(kind models.AssetKind, key string) error {
	if !models.ValidAssetKind(string(kind)) {
		return ErrInvalidKind
	}
	if !strings.HasPrefix(key, KindPrefix(kind)) {
		return ErrKindMismatch
	}
	return nil
}

// PublicKey reports whether a key may be streamed without a session
// (preview and thumbnail namespaces only).
func PublicKey(key string) bool {
	return strings.HasPrefix(key, KindPrefix(models.AssetKindPreview)) ||
		strings.HasPrefix(key, KindPrefix(models.AssetKindThumbnail))
}
