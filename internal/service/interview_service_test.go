package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() domain.InterviewRecord {
	questions := make([]domain.Question, domain.QuestionCount)
	for i, d := range domain.QuestionPlan {
		questions[i] = domain.Question{Text: "Explain café caching", Difficulty: d, TimeLimitSeconds: domain.TimeLimitFor(d)}
	}
	return domain.InterviewRecord{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		SessionID:      "s-1",
		CandidateName:  "Zoë Example",
		CandidateEmail: "zoe@example.com",
		CandidatePhone: "0123456789",
		CompanyName:    "Acme",
		JobRole:        domain.JobRoleBackend,
		Questions:      questions,
		Answers:        []string{"a", "b", "c", "d", "e", "f"},
		Scores:         []int{7, 6, 5, 8, 9, 4},
		FinalScore:     65,
		Summary:        "Good performance.",
		CompletedAt:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInterviewServiceListPaginates(t *testing.T) {
	repo := &fakeInterviewRepo{average: "72.3333333333"}
	for i := 0; i < 3; i++ {
		repo.records = append(repo.records, sampleRecord())
	}
	svc := NewInterviewService(repo)

	result, err := svc.List(context.Background(), "zoe", domain.JobRoleBackend, domain.SortByFinalScore, true, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, "72.3", result.AverageScore)
	assert.Equal(t, domain.Pagination{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, result.Pagination)
	assert.Equal(t, domain.InterviewFilter{
		Search:  "zoe",
		JobRole: domain.JobRoleBackend,
		SortBy:  domain.SortByFinalScore,
		Desc:    true,
		Limit:   2,
		Offset:  2,
	}, repo.filter)
}

func TestInterviewServiceListDefaults(t *testing.T) {
	repo := &fakeInterviewRepo{}
	svc := NewInterviewService(repo)

	result, err := svc.List(context.Background(), "", "", "", false, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, "0.0", result.AverageScore)
	assert.Equal(t, domain.SortByCompletedAt, repo.filter.SortBy)
	assert.Equal(t, maxPageLimit, repo.filter.Limit)
	assert.Equal(t, 0, repo.filter.Offset)

	_, err = svc.List(context.Background(), "", "", "salary", false, 1, 10)
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestInterviewServiceGetAndDelete(t *testing.T) {
	record := sampleRecord()
	repo := &fakeInterviewRepo{records: []domain.InterviewRecord{record}}
	svc := NewInterviewService(repo)
	ctx := context.Background()

	got, err := svc.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.SessionID, got.SessionID)

	require.NoError(t, svc.Delete(ctx, record.ID))
	_, err = svc.GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, record.ID), ErrInterviewNotFound)
}

func TestInterviewServiceGeneratePDF(t *testing.T) {
	record := sampleRecord()
	svc := NewInterviewService(&fakeInterviewRepo{records: []domain.InterviewRecord{record}})

	data, err := svc.GeneratePDF(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = svc.GeneratePDF(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}
