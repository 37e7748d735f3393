package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// File is a stored backup file.
type File struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// GDriveStore keeps backup files in google drive.
type GDriveStore struct {
	service *drive.Service
	// optional reader added to every created file
	shareWith string
}

func NewGDriveStore(ctx context.Context, credentialsJSON []byte, shareWith string) (*GDriveStore, error) {
	// https://github.com/googleapis/google-api-go-client/blob/master/drive/v3/drive-gen.go
	driveService, err := drive.NewService(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}
	return &GDriveStore{
		service:   driveService,
		shareWith: shareWith,
	}, nil
}

// FindFolder returns the id of the first non-trashed folder named name, or "" if there is none.
func (s *GDriveStore) FindFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, name)
	res, err := s.service.
		Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve folders: %w", err)
	}
	if len(res.Files) == 0 {
		return "", nil
	}
	return res.Files[0].Id, nil
}

func (s *GDriveStore) CreateFolder(ctx context.Context, name string) (string, error) {
	created, err := s.service.
		Files.Create(&drive.File{
			Name:     name,
			MimeType: folderMimeType,
		}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if err := s.share(ctx, created.Id); err != nil {
		return created.Id, fmt.Errorf("share backups folder: %w", err)
	}
	return created.Id, nil
}

func (s *GDriveStore) Delete(ctx context.Context, id string) error {
	return s.service.Files.Delete(id).Context(ctx).Do()
}

func (s *GDriveStore) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", folderID, folderMimeType)
	files := make([]File, 0)
	err := s.service.
		Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, createdTime)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				createdAt, err := time.Parse(time.RFC3339, f.CreatedTime)
				if err != nil {
					return fmt.Errorf("parse created time of %s: %w", f.Name, err)
				}
				files = append(files, File{ID: f.Id, Name: f.Name, CreatedAt: createdAt})
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *GDriveStore) Upload(ctx context.Context, folderID, name string, content []byte) (string, error) {
	created, err := s.service.
		Files.Create(&drive.File{
			Name: name,
			// https://developers.google.com/drive/api/v3/mime-types
			MimeType: "application/json",
			Parents:  []string{folderID},
		}).
		Fields("id, parents").
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if err := s.share(ctx, created.Id); err != nil {
		return created.Id, fmt.Errorf("share %s: %w", name, err)
	}
	return created.Id, nil
}

func (s *GDriveStore) share(ctx context.Context, fileID string) error {
	if s.shareWith == "" {
		return nil
	}
	_, err := s.service.Permissions.
		Create(fileID, &drive.Permission{
			EmailAddress: s.shareWith,
			Type:         "user",
			Role:         "reader",
		}).
		Context(ctx).
		Do()
	return err
}
