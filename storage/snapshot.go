package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
)

const snapshotContentType = "application/json"

type UploadResult struct {
	Key      string
	Location string // public URL
	ETag     string
}

// FileUploader is the object store snapshots are written to.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// SnapshotPublisher makes the latest bracket of a tournament readable by
// public viewers.
type SnapshotPublisher interface {
	// Publish stores snapshot and returns the public URL of the latest copy.
	Publish(ctx context.Context, tournamentID string, snapshot interface{}) (string, error)
}

type uploaderSnapshotPublisher struct {
	uploader FileUploader
	prefix   string
}

// NewSnapshotPublisher writes each snapshot twice: once under a unique key
// for history and once as <prefix>/<tournament>/latest.json.
func NewSnapshotPublisher(uploader FileUploader, prefix string) SnapshotPublisher {
	if prefix == "" {
		prefix = "brackets"
	}
	return &uploaderSnapshotPublisher{uploader: uploader, prefix: prefix}
}

func (p *uploaderSnapshotPublisher) Publish(ctx context.Context, tournamentID string, snapshot interface{}) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot for tournament %s: %w", tournamentID, err)
	}

	historyKey := path.Join(p.prefix, tournamentID, uuid.NewString()+".json")
	if _, err := p.uploader.Upload(ctx, historyKey, snapshotContentType, bytes.NewReader(data)); err != nil {
		return "", err
	}

	latest, err := p.uploader.Upload(ctx, path.Join(p.prefix, tournamentID, "latest.json"), snapshotContentType, bytes.NewReader(data))
	if err != nil {
		// latest.json still points at the previous snapshot; drop the orphan
		if delErr := p.uploader.Delete(ctx, historyKey); delErr != nil {
			slog.Warn("failed to remove orphaned snapshot", "key", historyKey, "error", delErr)
		}
		return "", err
	}
	return latest.Location, nil
}

type noopSnapshotPublisher struct{}

// NewNoopSnapshotPublisher is used when object storage is not configured.
func NewNoopSnapshotPublisher() SnapshotPublisher {
	return noopSnapshotPublisher{}
}

func (noopSnapshotPublisher) Publish(context.Context, string, interface{}) (string, error) {
	return "", nil
}
