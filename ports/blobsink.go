package ports

import (
	"context"
)

// BlobSink mirrors processed artifacts into remote object storage, writing
// each file to its primary key and a timestamped backup key. This is an
// alternate sink, not part of the transform core.
type BlobSink interface {
	UploadArtifacts(ctx context.Context, paths []string, timestamp string) error
}
