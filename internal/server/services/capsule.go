package services

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/echi/timecapsule/internal/common"
	"github.com/echi/timecapsule/internal/logging"
	"github.com/echi/timecapsule/internal/server/models"
	"github.com/echi/timecapsule/internal/server/repositories/capsules"
	"github.com/echi/timecapsule/internal/server/storage"
)

// ImageUpload is one attachment submitted with a creation request.
type ImageUpload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// CreateRequest is a validated-on-entry capsule creation request.
type CreateRequest struct {
	Message        string
	RecipientEmail string
	// DeliveryDate in "2006-01-02" form, as submitted.
	DeliveryDate string
	// Images in submission order; the stored URL order must match.
	Images []ImageUpload
}

// CapsuleService handles capsule creation and time-gated views.
type CapsuleService struct {
	repo   capsules.Repository
	blobs  storage.BlobStore
	loc    *time.Location
	logger logging.Logger
}

func NewCapsuleService(repo capsules.Repository, blobs storage.BlobStore, loc *time.Location, logger logging.Logger) *CapsuleService {
	return &CapsuleService{
		repo:   repo,
		blobs:  blobs,
		loc:    loc,
		logger: logger.With("module", "capsules"),
	}
}

// Create validates the request, uploads attachments in submission order and
// persists the capsule. Any upload failure fails the whole creation; a
// capsule with partially-uploaded attachments is never stored.
func (s *CapsuleService) Create(ctx context.Context, now time.Time, req CreateRequest) (string, error) {
	deliveryDate, err := s.validate(now, req)
	if err != nil {
		return "", err
	}

	imageURLs := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		url, err := s.blobs.Upload(ctx, storage.NewStorageKey(now), img.ContentType, img.Data)
		if err != nil {
			return "", fmt.Errorf("image upload error (%s): %w", img.Name, err)
		}
		imageURLs = append(imageURLs, url)
	}

	c := &models.Capsule{
		ID:             uuid.NewString(),
		Message:        req.Message,
		RecipientEmail: req.RecipientEmail,
		DeliveryDate:   deliveryDate,
		Images:         imageURLs,
		Delivered:      false,
		CreatedAt:      now.UTC(),
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return "", fmt.Errorf("error creating capsule: %w", err)
	}

	s.logger.Info(ctx, "capsule sealed", "id", c.ID, "delivery_date", deliveryDate.Format(time.DateOnly))
	return c.ID, nil
}

func (s *CapsuleService) validate(now time.Time, req CreateRequest) (time.Time, error) {
	if req.Message == "" {
		return time.Time{}, fmt.Errorf("%w: message is required", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.RecipientEmail); err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid recipient email", common.ErrValidation)
	}

	deliveryDate, err := time.Parse(time.DateOnly, req.DeliveryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid delivery date", common.ErrValidation)
	}

	// Strictly in the future: the earliest valid date is tomorrow.
	if !dateOnly(deliveryDate).After(dateOnly(now.In(s.loc))) {
		return time.Time{}, fmt.Errorf("%w: delivery date must be in the future", common.ErrValidation)
	}

	return dateOnly(deliveryDate), nil
}

// View fetches a capsule and runs it through the time gate. A missing id is
// reported as common.ErrNotFound before any date comparison.
func (s *CapsuleService) View(ctx context.Context, id string, now time.Time) (ViewResult, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ViewResult{}, err
	}
	return Evaluate(c, now, s.loc), nil
}
