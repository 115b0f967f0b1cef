package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/echi/timecapsule/internal/logging"
	"github.com/echi/timecapsule/internal/server/models"
	"github.com/echi/timecapsule/internal/server/notifier"
	"github.com/echi/timecapsule/internal/server/repositories/capsules"
)

const deliverySubject = "Your Echi Time Capsule is ready to open!"

// SweepService runs one delivery sweep: find due, undelivered capsules,
// notify each recipient and mark the capsule delivered.
//
// Semantics are at-least-once: if the delivered-flag update fails after a
// successful send, or two sweep runs overlap, a recipient may get a duplicate
// email. markDelivered is idempotent, so a race never corrupts data. The
// external cron trigger owns all retry scheduling; a failed run is simply
// retried on the next invocation.
type SweepService struct {
	repo        capsules.Repository
	notifier    notifier.Notifier
	logger      logging.Logger
	baseURL     string
	loc         *time.Location
	parallelism int
}

func NewSweepService(repo capsules.Repository, n notifier.Notifier, baseURL string, loc *time.Location, parallelism int, logger logging.Logger) *SweepService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &SweepService{
		repo:        repo,
		notifier:    n,
		logger:      logger.With("module", "sweep"),
		baseURL:     baseURL,
		loc:         loc,
		parallelism: parallelism,
	}
}

// Run executes one sweep as of the given instant. A candidate-query failure
// aborts the whole run; per-capsule failures are isolated and reported, never
// propagated to sibling candidates.
func (s *SweepService) Run(ctx context.Context, now time.Time) (*models.SweepReport, error) {
	candidates, err := s.repo.SelectDueUndelivered(ctx, now.In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("due capsule query failed: %w", err)
	}

	report := &models.SweepReport{
		Considered: len(candidates),
		Delivered:  []string{},
		Failures:   []models.SweepFailure{},
	}

	var mu sync.Mutex
	var failureErrs error

	g := new(errgroup.Group)
	g.SetLimit(s.parallelism)

	for _, c := range candidates {
		g.Go(func() error {
			if err := s.deliver(ctx, c); err != nil {
				mu.Lock()
				report.Failures = append(report.Failures, models.SweepFailure{
					CapsuleID: c.ID,
					Reason:    err.Error(),
				})
				failureErrs = multierr.Append(failureErrs, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			report.Delivered = append(report.Delivered, c.ID)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures land in the report.
	_ = g.Wait()

	sort.Strings(report.Delivered)
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].CapsuleID < report.Failures[j].CapsuleID
	})

	if failureErrs != nil {
		s.logger.Warn(ctx, "sweep finished with failures",
			"considered", report.Considered,
			"delivered", len(report.Delivered),
			"failed", len(report.Failures),
			"errors", failureErrs.Error())
	} else {
		s.logger.Info(ctx, "sweep finished",
			"considered", report.Considered,
			"delivered", len(report.Delivered))
	}

	return report, nil
}

// deliver notifies one recipient and then durably records delivery. If the
// flag update fails the email has already gone out; the capsule stays
// undelivered and gets re-notified on a later run.
func (s *SweepService) deliver(ctx context.Context, c *models.Capsule) error {
	capsuleURL := fmt.Sprintf("%s/capsules/%s", s.baseURL, c.ID)

	if err := s.notifier.Send(ctx, c.RecipientEmail, deliverySubject, deliveryEmailHTML(capsuleURL)); err != nil {
		return fmt.Errorf("notification failed: %w", err)
	}

	if err := s.repo.MarkDelivered(ctx, c.ID); err != nil {
		return fmt.Errorf("delivered flag update failed after send: %w", err)
	}

	return nil
}

func deliveryEmailHTML(capsuleURL string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; text-align: center; padding: 40px;">
			<h1>It is time.</h1>
			<p>A message from the past is waiting for you.</p>
			<a href="%s">Unlock Your Capsule</a>
		</div>`, capsuleURL)
}
