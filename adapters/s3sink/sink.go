// Package s3sink uploads processed artifacts to S3 as opaque blobs. It is
// an alternate sink alongside the warehouse, not part of the transform
// core.
package s3sink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"macropipe/internal/config"
	"macropipe/internal/errors"
)

// Sink uploads files to one S3 bucket with server-side encryption
type Sink struct {
	client *s3.Client
	cfg    config.S3Config
	logger *logrus.Logger
}

// New builds an S3 sink from the default AWS credential chain
func New(ctx context.Context, cfg config.S3Config, logger *logrus.Logger) (*Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.ExportError("failed to load AWS configuration", err)
	}

	return &Sink{
		client: s3.NewFromConfig(awsCfg),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Upload stores one local file under the given key with AES256 server-side
// encryption and the provided object metadata
func (s *Sink) Upload(ctx context.Context, localPath, key string, metadata map[string]string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return errors.ExportError("failed to open "+localPath, err)
	}
	defer file.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.cfg.Bucket),
		Key:                  aws.String(key),
		Body:                 file,
		ContentType:          aws.String("text/csv"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata:             metadata,
	})
	if err != nil {
		return errors.ExportError("failed to upload "+filepath.Base(localPath), err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.cfg.Bucket,
		"key":    key,
	}).Info("Uploaded artifact to S3")
	return nil
}

// UploadArtifacts mirrors the processed artifacts to the data prefix and,
// when enabled, to a timestamped backup prefix
func (s *Sink) UploadArtifacts(ctx context.Context, paths []string, timestamp string) error {
	for _, path := range paths {
		name := filepath.Base(path)
		metadata := map[string]string{
			"source":           "macropipe",
			"upload-timestamp": timestamp,
		}

		if err := s.Upload(ctx, path, s.cfg.DataPrefix+name, metadata); err != nil {
			return err
		}
		if s.cfg.UploadBackup {
			if err := s.Upload(ctx, path, s.cfg.BackupPrefix+timestamp+"/"+name, metadata); err != nil {
				return err
			}
		}
	}
	return nil
}
