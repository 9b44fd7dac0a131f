// Package evidence stores evidence files in the object store and records
// their metadata, undoing the blob write when the metadata insert fails.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/catalog"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/objectstore"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/saga"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/upload"
)

// Upload saga states
const (
	StateValidated saga.State = "VALIDATED"
	StateStored    saga.State = "STORED"
	StateRecorded  saga.State = "RECORDED"
)

const sagaName = "evidence_upload"

// UploadInput is one validated multipart upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
	PageKey     string
	PeriodYear  int
	FileType    models.EvidenceFileType
	Month       *int
	EntryID     *string
	RecordID    *string
	Standard    string
}

// UploadResult is the recorded file with the states the upload went through.
type UploadResult struct {
	File    *models.EntryFile
	History []saga.State
}

// Service implements upload, delete and listing of evidence files.
type Service struct {
	files   repository.EntryFileRepository
	entries repository.EntryRepository
	store   objectstore.Store
	catalog *catalog.Catalog
	gate    *authz.Gate
	metrics *metrics.Metrics
	counter counter.Counter
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCounter(c counter.Counter) Option {
	return func(s *Service) { s.counter = c }
}

// WithClock replaces time.Now for path generation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(files repository.EntryFileRepository, entries repository.EntryRepository, store objectstore.Store, cat *catalog.Catalog, gate *authz.Gate, opts ...Option) *Service {
	s := &Service{files: files, entries: entries, store: store, catalog: cat, gate: gate, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload runs validate, store and record. A failed record step deletes the
// stored blob and the record error is returned.
func (s *Service) Upload(ctx context.Context, p *authz.Principal, in UploadInput) (*UploadResult, error) {
	if err := s.gate.Require(p, authz.PermFilesWrite); err != nil {
		return nil, err
	}

	var (
		path string
		mime string
		file *models.EntryFile
	)

	run := saga.New(sagaName, s.metrics.SagaHooks())
	run.Add(saga.Step{
		Name:    "validate",
		Reached: StateValidated,
		Do: func(ctx context.Context) error {
			var err error
			path, mime, err = s.validate(ctx, p, in)
			return err
		},
	})
	run.Add(saga.Step{
		Name:    "store",
		Reached: StateStored,
		Do: func(ctx context.Context) error {
			if err := s.store.Put(ctx, path, in.Data, mime); err != nil {
				log.Errorf("[EvidenceSaga] Storing %s failed: %v", path, err)
				return apperror.FileUpload("failed to store file", err)
			}
			return nil
		},
		Undo: func(ctx context.Context) error {
			counter.Add(ctx, s.counter, counter.Compensations)
			if err := s.store.Delete(ctx, path); err != nil {
				return fmt.Errorf("delete orphaned blob %s: %w", path, err)
			}
			log.Infof("[EvidenceSaga] Removed blob %s after failed metadata insert", path)
			return nil
		},
	})
	run.Add(saga.Step{
		Name:    "record",
		Reached: StateRecorded,
		Do: func(ctx context.Context) error {
			file = &models.EntryFile{
				OwnerID:    p.ID,
				EntryID:    in.EntryID,
				FilePath:   path,
				FileName:   in.FileName,
				MimeType:   mime,
				FileSize:   int64(len(in.Data)),
				PageKey:    in.PageKey,
				FileType:   in.FileType,
				Standard:   in.Standard,
				PeriodYear: in.PeriodYear,
				Month:      in.Month,
				RecordID:   in.RecordID,
			}
			if err := s.files.Create(ctx, file); err != nil {
				log.Errorf("[EvidenceSaga] Recording %s failed: %v", path, err)
				return apperror.Database("failed to record file metadata", err)
			}
			return nil
		},
	})

	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	counter.Add(ctx, s.counter, counter.Uploads)
	log.Infof("[EvidenceSaga] User %s uploaded %s (%d bytes)", p.ID, path, file.FileSize)
	return &UploadResult{File: file, History: run.History()}, nil
}

func (s *Service) validate(ctx context.Context, p *authz.Principal, in UploadInput) (string, string, error) {
	size := int64(len(in.Data))
	if err := upload.ValidateSize(size); err != nil {
		return "", "", apperror.InvalidField("file", "size", err.Error())
	}
	if !s.catalog.Has(in.PageKey) {
		return "", "", apperror.InvalidField("page_key", "unknown", fmt.Sprintf("unknown page_key %q", in.PageKey))
	}

	if in.EntryID != nil {
		e, err := s.entries.GetByID(ctx, *in.EntryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperror.NotFound("entry")
		}
		if err != nil {
			return "", "", apperror.Database("failed to load entry", err)
		}
		if err := s.gate.CheckOwnership(p, e.OwnerID, "entry"); err != nil {
			return "", "", err
		}
	}

	head := in.Data
	if len(head) > 512 {
		head = head[:512]
	}
	mime := upload.ResolveMime(in.ContentType, in.FileName, head)

	path, err := upload.BuildPath(upload.PathSpec{
		OwnerID:  p.ID,
		Standard: in.Standard,
		PageKey:  in.PageKey,
		Month:    in.Month,
		FileName: in.FileName,
	}, s.now())
	if err != nil {
		return "", "", apperror.FileUpload("invalid file path", nil)
	}
	return path, mime, nil
}

// Delete removes the blob and the metadata row. A failed blob delete is
// logged and tolerated; a failed row delete is returned.
func (s *Service) Delete(ctx context.Context, p *authz.Principal, fileID string) error {
	if err := s.gate.Require(p, authz.PermFilesWrite); err != nil {
		return err
	}

	f, err := s.files.GetByID(ctx, fileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("file")
	}
	if err != nil {
		return apperror.Database("failed to load file", err)
	}
	if err := s.gate.CheckOwnership(p, f.OwnerID, "file"); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, f.FilePath); err != nil {
		log.Warnf("[EvidenceSaga] Deleting blob %s failed, removing metadata anyway: %v", f.FilePath, err)
	}
	if err := s.files.Delete(ctx, f.ID); err != nil {
		return apperror.Database("failed to delete file metadata", err)
	}

	counter.Add(ctx, s.counter, counter.FileDeletes)
	log.Infof("[EvidenceSaga] User %s deleted file %s", p.ID, f.ID)
	return nil
}

// ListByEntry lists the files of an entry. Roles that may read the admin
// listing see every owner's files; others only their own.
func (s *Service) ListByEntry(ctx context.Context, p *authz.Principal, entryID string) ([]models.EntryFile, error) {
	if err := s.gate.Require(p, authz.PermEntriesRead); err != nil {
		return nil, err
	}
	ownerID := p.ID
	if s.gate.Allowed(p.Role, authz.PermAdminEntriesRead) {
		ownerID = ""
	}
	files, err := s.files.ListByEntry(ctx, entryID, ownerID)
	if err != nil {
		return nil, apperror.Database("failed to list files", err)
	}
	return files, nil
}
