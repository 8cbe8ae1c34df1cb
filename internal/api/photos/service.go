package photos

import (
	"context"
	"errors"
	"time"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	shared.TripReader
	CreatePhoto(ctx context.Context, p *types.Photo) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*types.Photo, error)
	ListPhotos(ctx context.Context, tripID, viewer uuid.UUID) ([]types.Photo, error)
	UpdatePhotoStatus(ctx context.Context, id uuid.UUID, status types.PhotoStatus, storagePath, checksum string) error
	DeletePhoto(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	store    Store
	files    *storage.PhotoStore
	workers  *WorkerPool
	maxBytes int64
}

func NewService(store Store, files *storage.PhotoStore, maxBytes int64) *Service {
	return &Service{store: store, files: files, maxBytes: maxBytes}
}

func (s *Service) SetWorkers(workers *WorkerPool) {
	s.workers = workers
}

// Upload stages the photo, records it as pending and queues the job that
// moves it into place.
func (s *Service) Upload(ctx context.Context, tripID, user uuid.UUID, up Upload) (*types.Photo, error) {
	trip, err := shared.OwnedTrip(ctx, s.store, tripID, user)
	if err != nil {
		return nil, err
	}
	ext, err := up.Validate()
	if err != nil {
		return nil, err
	}

	staged, size, err := s.files.Stage(up.Body, s.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, utils.TooLarge("photo exceeds %d bytes", s.maxBytes)
		}
		return nil, err
	}

	photo := &types.Photo{
		TripID:      trip.ID,
		UserID:      user,
		Caption:     up.Caption,
		ContentType: up.ContentType,
		SizeBytes:   size,
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		s.discard(staged)
		return nil, shared.StoreError(err, "trip")
	}

	job := PhotoJob{
		PhotoID:   photo.ID,
		TripID:    trip.ID,
		UserID:    user,
		Staged:    staged,
		Target:    storage.CanonicalPath(user, trip.ID, photo.ID, ext),
		CreatedAt: time.Now().UTC(),
	}
	if s.workers == nil || !s.workers.Enqueue(job) {
		s.discard(staged)
		if _, err := s.store.DeletePhoto(ctx, photo.ID); err != nil {
			utils.Zlog.Error("Failed to delete unqueued photo", zap.String("photoId", photo.ID.String()), zap.Error(err))
		}
		return nil, utils.Unavailable("photo queue is full, try again later")
	}

	utils.Zlog.Info("Photo queued",
		zap.String("photoId", photo.ID.String()),
		zap.String("tripId", trip.ID.String()),
		zap.Int64("size", size))
	return photo, nil
}

// StorePhoto moves a staged photo into its final location and marks it
// ready. It is the worker pool's job handler.
func (s *Service) StorePhoto(ctx context.Context, job *PhotoJob) error {
	if job.Checksum == "" {
		sum, err := s.files.Commit(job.Staged, job.Target)
		if err != nil {
			return err
		}
		job.Checksum = sum
	}

	err := s.store.UpdatePhotoStatus(ctx, job.PhotoID, types.PhotoReady, job.Target, job.Checksum)
	if errors.Is(err, loaders.ErrNotFound) {
		// Deleted while queued.
		s.discard(job.Target)
		return nil
	}
	return err
}

// MarkFailed gives up on a job: its files are removed and the photo is
// marked failed.
func (s *Service) MarkFailed(ctx context.Context, job PhotoJob, cause error) {
	s.discard(job.Staged)
	if job.Checksum != "" {
		s.discard(job.Target)
	}
	if err := s.store.UpdatePhotoStatus(ctx, job.PhotoID, types.PhotoFailed, "", ""); err != nil && !errors.Is(err, loaders.ErrNotFound) {
		utils.Zlog.Error("Failed to mark photo as failed",
			zap.String("photoId", job.PhotoID.String()),
			zap.Error(err))
		return
	}
	utils.Zlog.Warn("Photo marked as failed",
		zap.String("photoId", job.PhotoID.String()),
		zap.NamedError("cause", cause))
}

func (s *Service) List(ctx context.Context, tripID, viewer uuid.UUID) ([]types.Photo, error) {
	if _, err := shared.VisibleTrip(ctx, s.store, tripID, viewer); err != nil {
		return nil, err
	}
	return s.store.ListPhotos(ctx, tripID, viewer)
}

// Get returns a photo the viewer may see. Photos that are not ready are
// only shown to their uploader.
func (s *Service) Get(ctx context.Context, id, viewer uuid.UUID) (*types.Photo, error) {
	photo, err := s.store.GetPhoto(ctx, id)
	if err != nil {
		return nil, shared.StoreError(err, "photo")
	}
	if _, err := shared.VisibleTrip(ctx, s.store, photo.TripID, viewer); err != nil {
		return nil, utils.NotFound("photo not found")
	}
	if photo.Status != types.PhotoReady && photo.UserID != viewer {
		return nil, utils.NotFound("photo not found")
	}
	return photo, nil
}

// File returns the photo and the absolute path of its file.
func (s *Service) File(ctx context.Context, id, viewer uuid.UUID) (*types.Photo, string, error) {
	photo, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, "", err
	}
	if photo.Status != types.PhotoReady {
		return nil, "", utils.NotFound("photo is %s", photo.Status)
	}
	if photo.StoragePath == "" {
		// Legacy photo not yet moved by the photo backfill.
		return nil, "", utils.NotFound("photo file has not been migrated yet")
	}
	path, err := s.files.Abs(photo.StoragePath)
	if err != nil {
		return nil, "", err
	}
	return photo, path, nil
}

// Delete removes the photo row and its file. The uploader and the trip
// owner may delete a photo.
func (s *Service) Delete(ctx context.Context, id, user uuid.UUID) error {
	photo, err := s.store.GetPhoto(ctx, id)
	if err != nil {
		return shared.StoreError(err, "photo")
	}
	trip, err := shared.VisibleTrip(ctx, s.store, photo.TripID, user)
	if err != nil {
		return utils.NotFound("photo not found")
	}
	if photo.UserID != user && trip.UserID != user {
		return utils.Forbidden("only the uploader can delete this photo")
	}

	path, err := s.store.DeletePhoto(ctx, id)
	if err != nil {
		return shared.StoreError(err, "photo")
	}
	if path != "" {
		s.discard(path)
	}
	return nil
}

func (s *Service) discard(rel string) {
	if err := s.files.Remove(rel); err != nil {
		utils.Zlog.Warn("Failed to remove photo file", zap.String("path", rel), zap.Error(err))
	}
}
