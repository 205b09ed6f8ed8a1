package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Dosada05/courtsched/models"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// ScheduleArchiver writes approved schedules as JSON documents.
type ScheduleArchiver struct {
	uploader FileUploader
}

func NewScheduleArchiver(uploader FileUploader) *ScheduleArchiver {
	if uploader == nil {
		uploader = NopUploader{}
	}
	return &ScheduleArchiver{uploader: uploader}
}

// ArchiveKey is the object key of a schedule snapshot.
func ArchiveKey(s *models.Schedule) string {
	if s.TournamentID != nil {
		return fmt.Sprintf("schedules/tournament_%d/%s.json", *s.TournamentID, s.ID)
	}
	return fmt.Sprintf("schedules/%s.json", s.ID)
}

func (a *ScheduleArchiver) Archive(ctx context.Context, s *models.Schedule) (*UploadResult, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule %s: %w", s.ID, err)
	}
	return a.uploader.Upload(ctx, ArchiveKey(s), "application/json", bytes.NewReader(body))
}

func (a *ScheduleArchiver) URL(key *string) string {
	if key == nil {
		return ""
	}
	return a.uploader.GetPublicURL(*key)
}

// NopUploader is used when no bucket is configured.
type NopUploader struct{}

func (NopUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrStorageDisabled
}

func (NopUploader) Delete(context.Context, string) error { return nil }

func (NopUploader) GetPublicURL(string) string { return "" }
