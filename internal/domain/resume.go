package domain

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

type ResumeUpload struct {
	File       *multipart.FileHeader
	ResumeText string
}

type StoredResume struct {
	URL      string `json:"url"`
	FileID   string `json:"file_id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	FileType string `json:"file_type"`
}

type ResumeUploadResponse struct {
	Session       *InterviewSession `json:"session"`
	Extracted     CandidateProfile  `json:"extracted"`
	MissingFields []string          `json:"missing_fields"`
	File          *StoredResume     `json:"file,omitempty"`
}

type FeatureType string

const (
	FeatureInterview    FeatureType = "interview"
	FeatureResumeUpload FeatureType = "resume_upload"
)

type Usage struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Feature     FeatureType `json:"feature"`
	PeriodMonth time.Time   `json:"period_month"`
	Count       int         `json:"count"`
	CreatedAt   time.Time   `json:"created_at"`
	DeletedAt   *time.Time  `json:"deleted_at,omitempty"`
}

// PeriodStart returns the first day of t's month in UTC.
func PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type UserQuota struct {
	MaxInterviews  int `json:"max_interviews"`
	UsedInterviews int `json:"used_interviews"`
}

type UsageRepository interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, feature FeatureType, periodMonth time.Time) (*Usage, error)
	IncrementWithinLimit(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	Decrement(ctx context.Context, id uuid.UUID) error
	GetCurrentMonthUsage(ctx context.Context, userID uuid.UUID, feature FeatureType) (*Usage, error)
}

type QuotaService interface {
	CheckAndIncrementUsage(ctx context.Context, userID uuid.UUID, feature FeatureType) error
	RefundUsage(ctx context.Context, userID uuid.UUID, feature FeatureType) error
	GetUserQuota(ctx context.Context, userID uuid.UUID) (*UserQuota, error)
}

type ResumeService interface {
	Upload(ctx context.Context, userID uuid.UUID, upload *ResumeUpload) (*ResumeUploadResponse, error)
}
