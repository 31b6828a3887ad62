package blob

import (
	"context"
	"fmt"

	"pet-clinic-booking/internal/config"
)

// Open elige el driver según config: memory (default), fs o s3.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch Driver(cfg.BlobDriver) {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(cfg.BlobFSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
