package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
)

const (
	FolderName = "fittrack-backup"
	// number of workouts in one backup file
	ChunkSize = 350
)

type fileStore interface {
	FindFolder(ctx context.Context, name string) (string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, id string) error
	ListFiles(ctx context.Context, folderID string) ([]File, error)
	Upload(ctx context.Context, folderID, name string, content []byte) (string, error)
}

type workoutsSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]workouts.Workout, error)
}

type Service struct {
	store    fileStore
	workouts workoutsSource
}

func NewService(store fileStore, workouts workoutsSource) *Service {
	return &Service{
		store:    store,
		workouts: workouts,
	}
}

// DoBackup uploads the workouts created after the newest existing backup file
// and returns how many were written.
func (s *Service) DoBackup(ctx context.Context, baseTime time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalBackupTracer.Start(ctx, "backup.do")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	folderID, err := s.folder(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := s.store.ListFiles(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("list backup files: %w", err)
	}

	lastCreatedAt := time.Time{}
	for _, file := range existing {
		log.Debugf(" -- [%v]: %s (%s)", file.CreatedAt, file.Name, file.ID)
		if file.CreatedAt.After(lastCreatedAt) {
			lastCreatedAt = file.CreatedAt
		}
	}

	toBackup, err := s.workouts.ListCreatedSince(ctx, lastCreatedAt)
	if err != nil {
		return 0, fmt.Errorf("get workouts to backup: %w", err)
	}
	span.SetAttributes(attribute.Int("workouts.count", len(toBackup)))

	if len(toBackup) == 0 {
		log.Println("no new workouts to backup, done")
		return 0, nil
	}

	log.Printf(" ---- backing up %d workouts since %v", len(toBackup), lastCreatedAt)

	names := newNameSequence(baseTime, existing)
	for _, chunk := range chunks(toBackup, ChunkSize) {
		name := names.next()
		content, err := json.Marshal(chunk)
		if err != nil {
			return 0, fmt.Errorf("%s: marshal workouts: %w", name, err)
		}

		id, err := s.store.Upload(ctx, folderID, name, content)
		if err != nil {
			return 0, fmt.Errorf("%s: upload: %w", name, err)
		}
		log.Printf("%s: backup file with %d workouts saved: %s", name, len(chunk), id)
	}

	return len(toBackup), nil
}

// Reinit drops the backups folder and backs up all workouts again.
func (s *Service) Reinit(ctx context.Context, baseTime time.Time) (int, error) {
	log.Println("workouts backup reinit starting ...")

	folderID, err := s.store.FindFolder(ctx, FolderName)
	if err != nil {
		return 0, err
	}
	if folderID != "" {
		if err := s.store.Delete(ctx, folderID); err != nil {
			return 0, fmt.Errorf("delete backups folder: %w", err)
		}
	}

	return s.DoBackup(ctx, baseTime)
}

func (s *Service) folder(ctx context.Context) (string, error) {
	folderID, err := s.store.FindFolder(ctx, FolderName)
	if err != nil {
		return "", err
	}
	if folderID != "" {
		log.Debugf("found backups folder ID: %s", folderID)
		return folderID, nil
	}

	log.Println("root backups folder not found, creating ...")
	folderID, err = s.store.CreateFolder(ctx, FolderName)
	if err != nil {
		return "", fmt.Errorf("failed to create root backups folder: %w", err)
	}
	log.Printf("new root backups folder created: %s", folderID)
	return folderID, nil
}

func chunks(all []workouts.Workout, size int) [][]workouts.Workout {
	result := make([][]workouts.Workout, 0, len(all)/size+1)
	for from := 0; from < len(all); from += size {
		to := min(from+size, len(all))
		result = append(result, all[from:to])
	}
	return result
}

// nameSequence yields workouts-<d>-<m>-<yyyy>.json, then _2, _3 ... skipping taken names.
type nameSequence struct {
	base    string
	counter int
	taken   map[string]bool
}

func newNameSequence(baseTime time.Time, existing []File) *nameSequence {
	taken := make(map[string]bool, len(existing))
	for _, f := range existing {
		taken[f.Name] = true
	}
	return &nameSequence{
		base:  fmt.Sprintf("workouts-%d-%d-%d", baseTime.Day(), baseTime.Month(), baseTime.Year()),
		taken: taken,
	}
}

func (ns *nameSequence) next() string {
	for {
		ns.counter++
		name := ns.base + ".json"
		if ns.counter > 1 {
			name = fmt.Sprintf("%s_%d.json", ns.base, ns.counter)
		}
		if !ns.taken[name] {
			ns.taken[name] = true
			return name
		}
	}
}
