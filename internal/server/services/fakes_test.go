package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/echi/timecapsule/internal/common"
	"github.com/echi/timecapsule/internal/server/models"
)

// fakeRepo is an in-memory capsule store for service tests.
type fakeRepo struct {
	mu       sync.Mutex
	capsules map[string]*models.Capsule

	insertErr error
	selectErr error
	// markErrs holds per-id errors returned by MarkDelivered.
	markErrs map[string]error

	inserts int
	selects int
	marks   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		capsules: make(map[string]*models.Capsule),
		markErrs: make(map[string]error),
	}
}

func (f *fakeRepo) Insert(ctx context.Context, c *models.Capsule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *c
	f.capsules[c.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*models.Capsule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.capsules[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) SelectDueUndelivered(ctx context.Context, asOf time.Time) ([]*models.Capsule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	var due []*models.Capsule
	for _, c := range f.capsules {
		if c.Delivered {
			continue
		}
		y1, m1, d1 := c.DeliveryDate.Date()
		y2, m2, d2 := asOf.Date()
		if time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC).After(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)) {
			continue
		}
		cp := *c
		due = append(due, &cp)
	}
	return due, nil
}

func (f *fakeRepo) MarkDelivered(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.markErrs[id]; err != nil {
		return err
	}
	c, ok := f.capsules[id]
	if !ok {
		return common.ErrNotFound
	}
	c.Delivered = true
	f.marks = append(f.marks, id)
	return nil
}

// fakeBlobStore records uploads and returns deterministic URLs.
type fakeBlobStore struct {
	mu      sync.Mutex
	uploads []string // content-type of each upload, in order
	failAt  int      // 1-based index of the upload that fails; 0 = never
}

func (f *fakeBlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, contentType)
	if f.failAt > 0 && len(f.uploads) == f.failAt {
		return "", fmt.Errorf("bucket unavailable")
	}
	return fmt.Sprintf("https://blob.example.com/%d", len(f.uploads)), nil
}

// fakeNotifier records sends; failFor addresses always fail.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string // recipient addresses, in send order
	failFor map[string]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[string]error)}
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}
