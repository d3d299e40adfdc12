package datastore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/danthegoodman1/tinyrdb/s3_helper"
	"github.com/danthegoodman1/tinyrdb/utils"
)

type (
	// S3DataStore keeps the snapshot as one object. Each write is a full upload.
	S3DataStore struct {
		key string
	}
)

func NewS3DataStore(key string) (*S3DataStore, error) {
	if utils.S3_BUCKET_NAME == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME is required for the s3 datastore")
	}
	return &S3DataStore{key: key}, nil
}

func (sds *S3DataStore) ReadSnapshot(ctx context.Context) ([]byte, error) {
	b, err := s3_helper.ReadBytesFromS3(ctx, sds.key)
	if errors.Is(err, s3_helper.ErrObjectNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error in s3_helper.ReadBytesFromS3: %w", err)
	}
	return b, nil
}

func (sds *S3DataStore) WriteSnapshot(ctx context.Context, snapshot []byte) error {
	_, err := s3_helper.WriteBytesToS3(ctx, sds.key, bytes.NewReader(snapshot), utils.Ptr("application/json"))
	if err != nil {
		return fmt.Errorf("error in s3_helper.WriteBytesToS3: %w", err)
	}
	return nil
}

func (sds *S3DataStore) Shutdown(_ context.Context) error {
	return nil
}
