package minio

import (
	"bytes"
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/errors"
)

// Artifact is one archived file.
type Artifact struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size"`
}

// Archiver copies workspace files to <bucket>/<session-id>/<name>.
type Archiver struct {
	client *MinIOClient
	logger logging.Logger
}

func NewArchiver(client *MinIOClient, log logging.Logger) *Archiver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Archiver{client: client, logger: log.Named("archiver")}
}

// Archive uploads every existing file in paths under the session prefix and
// returns presigned download URLs.  Missing files are skipped.
func (a *Archiver) Archive(ctx context.Context, sessionID string, paths []string) ([]Artifact, error) {
	var out []Artifact
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return out, errors.Wrap(err, errors.CodeStorageError, "failed to read artifact")
		}
		name := filepath.Base(p)
		key := path.Join(sessionID, name)
		info, err := a.client.client.PutObject(ctx, a.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType:  contentType(name),
			UserMetadata: map[string]string{"session-id": sessionID},
		})
		if err != nil {
			a.logger.Error("artifact upload failed", logging.String("key", key), logging.Err(err))
			return out, errors.Wrap(err, errors.CodeStorageError, "failed to upload artifact")
		}
		url, err := a.client.PresignedGetURL(ctx, key)
		if err != nil {
			a.logger.Warn("presign failed", logging.String("key", key), logging.Err(err))
		}
		out = append(out, Artifact{Name: name, Key: key, URL: url, Size: info.Size})
	}
	a.logger.Debug("artifacts archived", logging.String(logging.FieldSessionID, sessionID), logging.Int("count", len(out)))
	return out, nil
}

// Remove deletes every object under the session prefix.
func (a *Archiver) Remove(ctx context.Context, sessionID string) error {
	objects := a.client.client.ListObjects(ctx, a.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    sessionID + "/",
		Recursive: true,
	})
	for rerr := range a.client.client.RemoveObjects(ctx, a.client.Bucket(), objects, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return errors.Wrap(rerr.Err, errors.CodeStorageError, "failed to remove artifact "+rerr.ObjectName)
		}
	}
	return nil
}

// Ping checks the bucket.
func (a *Archiver) Ping(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".pdb":
		return "chemical/x-pdb"
	case ".png":
		return "image/png"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

//Personal.AI order the ending
