package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/google/uuid"
)

type fakeUsageRepo struct {
	mu     sync.Mutex
	usages map[string]*domain.Usage
	err    error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{usages: map[string]*domain.Usage{}}
}

func usageKey(userID uuid.UUID, feature domain.FeatureType) string {
	return userID.String() + ":" + string(feature)
}

func (f *fakeUsageRepo) FindOrCreate(_ context.Context, userID uuid.UUID, feature domain.FeatureType, periodMonth time.Time) (*domain.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := usageKey(userID, feature)
	if u, ok := f.usages[key]; ok {
		return u, nil
	}
	u := &domain.Usage{ID: uuid.New(), UserID: userID, Feature: feature, PeriodMonth: periodMonth}
	f.usages[key] = u
	return u, nil
}

func (f *fakeUsageRepo) IncrementWithinLimit(_ context.Context, id uuid.UUID, limit int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.usages {
		if u.ID == id {
			if limit > 0 && u.Count >= limit {
				return false, nil
			}
			u.Count++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsageRepo) Decrement(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.usages {
		if u.ID == id && u.Count > 0 {
			u.Count--
		}
	}
	return nil
}

func (f *fakeUsageRepo) count(userID uuid.UUID, feature domain.FeatureType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.usages[usageKey(userID, feature)]; ok {
		return u.Count
	}
	return 0
}

func (f *fakeUsageRepo) GetCurrentMonthUsage(_ context.Context, userID uuid.UUID, feature domain.FeatureType) (*domain.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.usages[usageKey(userID, feature)]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type fakeInterviewRepo struct {
	mu      sync.Mutex
	records []domain.InterviewRecord
	err     error
	average string
	filter  domain.InterviewFilter
}

func (f *fakeInterviewRepo) Create(_ context.Context, record *domain.InterviewRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeInterviewRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.InterviewRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].DeletedAt == nil {
			r := f.records[i]
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeInterviewRepo) List(_ context.Context, filter domain.InterviewFilter) ([]domain.InterviewRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	out := make([]domain.InterviewRecord, 0)
	for _, r := range f.records {
		if r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeInterviewRepo) Count(_ context.Context, _ domain.InterviewFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if r.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeInterviewRepo) AverageFinalScore(_ context.Context, _ domain.InterviewFilter) (string, error) {
	if f.average == "" {
		return "0", nil
	}
	return f.average, nil
}

func (f *fakeInterviewRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].DeletedAt == nil {
			now := time.Now()
			f.records[i].DeletedAt = &now
			return nil
		}
	}
	return sql.ErrNoRows
}
