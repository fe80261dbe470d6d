// Package archive writes periodic status snapshots to S3-compatible
// object storage, building a mowing history outside the broker.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/options"
)

// Archiver stores one JSON object per interval under
// <deviceID>/<RFC3339 timestamp>.json.
type Archiver struct {
	logger   log.Logger
	client   *minio.Client
	coord    *mower.Coordinator
	bucket   string
	interval time.Duration

	done chan struct{}
}

// NewArchiver creates an archiver from the S3 options. The options must be
// enabled; callers skip construction entirely when no endpoint is set.
func NewArchiver(opts *options.S3Options, coord *mower.Coordinator, logger log.Logger) (*Archiver, error) {
	if !opts.Enabled() {
		return nil, fmt.Errorf("archive: no endpoint configured")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Archiver{
		logger:   logger.WithName("archive").WithValues("bucket", opts.BucketName),
		client:   client,
		coord:    coord,
		bucket:   opts.BucketName,
		interval: opts.Interval,
	}, nil
}

// CheckBucket verifies the bucket exists, creating it when missing.
func (a *Archiver) CheckBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		a.logger.Info("Bucket does not exist, creating")
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Start verifies the bucket and launches the periodic archive loop. The
// loop runs until ctx is cancelled.
func (a *Archiver) Start(ctx context.Context) error {
	if err := a.CheckBucket(ctx); err != nil {
		return err
	}

	a.done = make(chan struct{})
	go a.run(ctx)

	a.logger.Info("Snapshot archiver started", "interval", a.interval)
	return nil
}

// Wait blocks until the archive loop has exited.
func (a *Archiver) Wait() {
	if a.done != nil {
		<-a.done
	}
}

func (a *Archiver) run(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.archiveOnce(ctx); err != nil {
				a.logger.Warn("Snapshot archive failed", "err", err)
			}
		}
	}
}

// archiveOnce stores the current snapshot. An empty cache is not an error,
// there is simply nothing to store yet.
func (a *Archiver) archiveOnce(ctx context.Context) error {
	snapshot, err := a.coord.Cache().Snapshot()
	if err != nil {
		if errors.Is(err, mower.ErrNoData) {
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	body, err := json.Marshal(map[string]any{
		"device_id":   a.coord.DeviceID(),
		"archived_at": now.Format(time.RFC3339),
		"status":      snapshot,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := ObjectKey(a.coord.DeviceID(), now)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	a.logger.Debug("Snapshot archived", "key", key)
	return nil
}

// ObjectKey builds the storage key for one archived snapshot.
func ObjectKey(deviceID string, t time.Time) string {
	return fmt.Sprintf("%s/%s.json", deviceID, t.UTC().Format("2006-01-02T15-04-05Z"))
}
