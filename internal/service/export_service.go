package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/notesmeta"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportResult points at an uploaded history export.
type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Records     int       `json:"records"`
}

// ErasureReport counts what EraseUserData removed.
type ErasureReport struct {
	Plans         int64 `json:"plans"`
	Workouts      int64 `json:"workouts"`
	Links         int64 `json:"links"`
	Completions   int64 `json:"completions"`
	Objects       int   `json:"objects"`
	ObjectsFailed int   `json:"objectsFailed"`
}

type ExportService interface {
	// ExportHistory uploads every completion of ownerID as JSON and returns a
	// temporary download link.
	ExportHistory(ctx context.Context, ownerID primitive.ObjectID) (*ExportResult, error)
	// EraseUserData removes all plans, workouts, links and completions of
	// ownerID in one transaction, then the owner's exports.
	EraseUserData(ctx context.Context, ownerID primitive.ObjectID) (*ErasureReport, error)
}

type exportService struct {
	tx             repository.Transactor
	planRepo       repository.GeneratedPlanRepository
	workoutRepo    repository.WorkoutRepository
	linkRepo       repository.WorkoutExerciseRepository
	completionRepo repository.CompletionRepository
	files          storage.FileStorage
	urlExpiry      time.Duration
	log            *logger.Logger
	now            func() time.Time
}

func NewExportService(
	tx repository.Transactor,
	planRepo repository.GeneratedPlanRepository,
	workoutRepo repository.WorkoutRepository,
	linkRepo repository.WorkoutExerciseRepository,
	completionRepo repository.CompletionRepository,
	files storage.FileStorage,
	urlExpiry time.Duration,
	log *logger.Logger,
) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		tx:             tx,
		planRepo:       planRepo,
		workoutRepo:    workoutRepo,
		linkRepo:       linkRepo,
		completionRepo: completionRepo,
		files:          files,
		urlExpiry:      urlExpiry,
		log:            log,
		now:            time.Now,
	}
}

type historyExport struct {
	OwnerID    string                    `json:"ownerId"`
	ExportedAt time.Time                 `json:"exportedAt"`
	Records    []domain.CompletionRecord `json:"records"`
}

func exportPrefix(ownerID primitive.ObjectID) string {
	return "exports/" + ownerID.Hex() + "/"
}

func (s *exportService) ExportHistory(ctx context.Context, ownerID primitive.ObjectID) (*ExportResult, error) {
	records, err := s.completionRepo.ListByOwner(ctx, ownerID, "", 0)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if m, ok := notesmeta.Extract(records[i].Notes); ok {
			records[i].Metadata = m
		}
	}

	now := s.now().UTC()
	body, err := json.Marshal(historyExport{OwnerID: ownerID.Hex(), ExportedAt: now, Records: records})
	if err != nil {
		return nil, fmt.Errorf("encode history export: %w", err)
	}

	key := exportPrefix(ownerID) + uuid.NewString() + ".json"
	if err := s.files.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, &StorageWriteError{Op: "upload history export", Err: err}
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign history export: %w", err)
	}

	s.log.Info("history exported", "ownerId", ownerID.Hex(), "key", key, "records", len(records))
	return &ExportResult{
		ObjectKey:   key,
		DownloadURL: url,
		ExpiresAt:   now.Add(s.urlExpiry),
		Records:     len(records),
	}, nil
}

func (s *exportService) EraseUserData(ctx context.Context, ownerID primitive.ObjectID) (*ErasureReport, error) {
	if ownerID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}

	var report ErasureReport
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		report = ErasureReport{}
		workoutIDs, err := s.workoutRepo.GetIDsByOwnerID(ctx, ownerID)
		if err != nil {
			return err
		}
		if len(workoutIDs) > 0 {
			if report.Links, err = s.linkRepo.DeleteByWorkoutIDs(ctx, workoutIDs); err != nil {
				return err
			}
		}
		if report.Workouts, err = s.workoutRepo.DeleteByOwnerID(ctx, ownerID); err != nil {
			return err
		}
		if report.Completions, err = s.completionRepo.DeleteByOwnerID(ctx, ownerID); err != nil {
			return err
		}
		if report.Plans, err = s.planRepo.DeleteByOwnerID(ctx, ownerID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Error("user data erasure rolled back", "ownerId", ownerID.Hex(), "error", err)
		return nil, &StorageWriteError{Op: "erase user data", Err: err}
	}

	// Object storage is outside the transaction. Leftovers are logged and can
	// be removed by repeating the call.
	keys, err := s.files.ListObjectKeys(ctx, exportPrefix(ownerID))
	if err != nil {
		s.log.Warn("listing exports for erasure failed", "ownerId", ownerID.Hex(), "error", err)
	}
	for _, key := range keys {
		if err := s.files.DeleteObject(ctx, key); err != nil {
			report.ObjectsFailed++
			continue
		}
		report.Objects++
	}

	s.log.Info("user data erased", "ownerId", ownerID.Hex(),
		"plans", report.Plans, "workouts", report.Workouts, "completions", report.Completions, "objects", report.Objects)
	return &report, nil
}
