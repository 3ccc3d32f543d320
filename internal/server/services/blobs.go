package services

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/blobstore"
)

// BlobStore is the object storage the services upload assets to.
type BlobStore interface {
	Upload(ctx context.Context, localPath string) (blobstore.Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// discardTemp removes staged uploads that never reached the blob store.
func discardTemp(paths ...string) {
	for _, p := range paths {
		_ = filex.RemoveQuietly(p)
	}
}

// deleteBlob removes the object behind url. Failures are only logged; the
// database change that orphaned the object has already happened.
func deleteBlob(ctx context.Context, blobs BlobStore, logger logging.Logger, url string) {
	key, ok := blobs.KeyFromURL(url)
	if !ok {
		return
	}
	if err := blobs.Delete(ctx, key); err != nil {
		logger.Warn(ctx, "failed to delete object", "key", key, "error", err)
	}
}
