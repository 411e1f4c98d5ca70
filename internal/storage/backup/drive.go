package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymcoach/internal/telemetry/metrics"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/drive/v3"
)

const (
	DefaultFolderName = "gymcoach-backup"
	folderMimeType    = "application/vnd.google-apps.folder"
	backupMimeType    = "application/json"
)

var ErrNothingToBackup = errors.New("user db document is empty")

// DocumentSource provides the raw user database document.
type DocumentSource interface {
	Raw(ctx context.Context) ([]byte, error)
}

type DriveBackupParams struct {
	Source     DocumentSource
	Drive      *drive.Service
	FolderName string
	// ShareWithEmail, when set, gets reader access to the folder and each backup file.
	ShareWithEmail string
	Metrics        *metrics.Manager
}

// DriveBackupService stores snapshots of the whole user database as json
// files in a google drive folder.
type DriveBackupService struct {
	source         DocumentSource
	service        *drive.Service
	folderName     string
	shareWithEmail string
	metrics        *metrics.Manager

	backupsFolderId string
}

func NewDriveBackupService(ctx context.Context, params DriveBackupParams) (*DriveBackupService, error) {
	if params.Source == nil || params.Drive == nil {
		return nil, errors.New("backup source and drive service are required")
	}

	folderName := params.FolderName
	if folderName == "" {
		folderName = DefaultFolderName
	}

	s := &DriveBackupService{
		source:         params.Source,
		service:        params.Drive,
		folderName:     folderName,
		shareWithEmail: params.ShareWithEmail,
		metrics:        params.Metrics,
	}

	folderQuery := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, folderName)
	folders, err := s.service.
		Files.List().
		Q(folderQuery).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list backup folders: %w", err)
	}

	switch len(folders.Files) {
	case 0:
		log.Printf("backups folder %s not found, creating it ...", folderName)
		s.backupsFolderId, err = s.createBackupsFolder(ctx)
		if err != nil {
			return nil, fmt.Errorf("create backups folder: %w", err)
		}
		log.Printf("new backups folder created: %s", s.backupsFolderId)
	case 1:
		s.backupsFolderId = folders.Files[0].Id
		log.Debugf("backups folder found, %s: %s", folderName, s.backupsFolderId)
	default:
		s.backupsFolderId = folders.Files[0].Id
		log.Warnf("found %d backups folders named %s, taking the first one: %s", len(folders.Files), folderName, s.backupsFolderId)
	}

	return s, nil
}

// DoBackup uploads the current document and returns the name of the created file.
func (s *DriveBackupService) DoBackup(ctx context.Context, baseTime time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.drive.do")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		s.count(err)
	}()

	doc, err := s.source.Raw(ctx)
	if err != nil {
		return "", fmt.Errorf("read user db: %w", err)
	}
	if len(bytes.TrimSpace(doc)) == 0 {
		return "", ErrNothingToBackup
	}

	existing, err := s.backupFiles(ctx)
	if err != nil {
		return "", fmt.Errorf("list backup files: %w", err)
	}

	fileName := NextBackupFileName(baseTime, existing)
	span.SetAttributes(attribute.String("file", fileName))

	fileMeta := &drive.File{
		Name:     fileName,
		MimeType: backupMimeType,
		Parents:  []string{s.backupsFolderId},
	}
	created, err := s.service.
		Files.Create(fileMeta).
		Fields("id, parents").
		Media(bytes.NewReader(doc)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%s: create backup file: %w", fileName, err)
	}

	if s.shareWithEmail != "" {
		permissionId, err := s.share(ctx, created.Id)
		if err != nil {
			return "", fmt.Errorf("%s: share backup file: %w", fileName, err)
		}
		log.Debugf("%s: permission %s created", fileName, permissionId)
	}

	log.Printf("user db backup saved: %s [%d bytes] (%s)", fileName, len(doc), created.Id)

	return fileName, nil
}

// NextBackupFileName returns gymcoach-db-<day>-<month>-<year>.json, suffixed with
// _2, _3... when a backup with that name already exists.
func NextBackupFileName(baseTime time.Time, existing []*drive.File) string {
	taken := make(map[string]bool, len(existing))
	for _, f := range existing {
		taken[f.Name] = true
	}

	base := fmt.Sprintf("gymcoach-db-%d-%d-%d", baseTime.Day(), baseTime.Month(), baseTime.Year())
	name := base + ".json"
	for counter := 2; taken[name]; counter++ {
		name = fmt.Sprintf("%s_%d.json", base, counter)
	}
	return name
}

func (s *DriveBackupService) createBackupsFolder(ctx context.Context) (string, error) {
	folderMeta := &drive.File{
		Name:     s.folderName,
		MimeType: folderMimeType,
	}

	folder, err := s.service.
		Files.Create(folderMeta).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	if s.shareWithEmail != "" {
		if _, err := s.share(ctx, folder.Id); err != nil {
			return folder.Id, fmt.Errorf("share backups folder: %w", err)
		}
	}

	return folder.Id, nil
}

func (s *DriveBackupService) share(ctx context.Context, fileId string) (string, error) {
	permission := &drive.Permission{
		EmailAddress: s.shareWithEmail,
		Type:         "user",
		Role:         "reader",
	}

	created, err := s.service.Permissions.
		Create(fileId, permission).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	return created.Id, nil
}

func (s *DriveBackupService) backupFiles(ctx context.Context) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", s.backupsFolderId, folderMimeType)
	backups, err := s.service.
		Files.List().
		Q(query).
		Fields("files(id, name, createdTime)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return backups.Files, nil
}

func (s *DriveBackupService) count(err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, ErrNothingToBackup):
		result = "skipped"
	case err != nil:
		result = "error"
	}
	s.metrics.CounterBackups.WithLabelValues(result).Inc()
}
