package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	interviewColumns = `id, user_id, session_id, candidate_name, candidate_email, candidate_phone, company_name, job_role, questions, answers, scores, final_score, summary, completed_at, deleted_at`
)

type interviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) domain.InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(ctx context.Context, record *domain.InterviewRecord) error {
	questionsJSON, err := json.Marshal(record.Questions)
	if err != nil {
		return err
	}
	answersJSON, err := json.Marshal(record.Answers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO interviews (id, user_id, session_id, candidate_name, candidate_email, candidate_phone,
			company_name, job_role, questions, answers, scores, final_score, summary, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.SessionID,
		record.CandidateName,
		record.CandidateEmail,
		record.CandidatePhone,
		record.CompanyName,
		record.JobRole,
		questionsJSON,
		answersJSON,
		pq.Array(record.Scores),
		record.FinalScore,
		record.Summary,
		record.CompletedAt,
	)
	return err
}

func (r *interviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InterviewRecord, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanRecord(r.db.QueryRowContext(ctx, query, id))
}

func (r *interviewRepository) List(ctx context.Context, filter domain.InterviewFilter) ([]domain.InterviewRecord, error) {
	where, args := buildInterviewWhere(filter)
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM interviews
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, interviewColumns, where, interviewOrderBy(filter), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.InterviewRecord, 0)
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (r *interviewRepository) Count(ctx context.Context, filter domain.InterviewFilter) (int64, error) {
	where, args := buildInterviewWhere(filter)
	query := `SELECT COUNT(id) FROM interviews ` + where

	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// AverageFinalScore returns the numeric average as text so callers keep full precision.
func (r *interviewRepository) AverageFinalScore(ctx context.Context, filter domain.InterviewFilter) (string, error) {
	where, args := buildInterviewWhere(filter)
	query := `SELECT COALESCE(AVG(final_score), 0)::text FROM interviews ` + where

	var avg string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&avg)
	return avg, err
}

func (r *interviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE interviews
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// likeEscaper makes search text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildInterviewWhere(filter domain.InterviewFilter) (string, []interface{}) {
	conditions := []string{"deleted_at IS NULL"}
	args := make([]interface{}, 0, 2)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		conditions = append(conditions, fmt.Sprintf(`(candidate_name ILIKE $%d ESCAPE '\' OR candidate_email ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if filter.JobRole != "" {
		args = append(args, filter.JobRole)
		conditions = append(conditions, fmt.Sprintf("job_role = $%d", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func interviewOrderBy(filter domain.InterviewFilter) string {
	column := "completed_at"
	switch filter.SortBy {
	case domain.SortByFinalScore:
		column = "final_score"
	case domain.SortByCandidateName:
		column = "LOWER(candidate_name)"
	}

	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}
	return column + " " + direction + ", id " + direction
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *interviewRepository) scanRecord(row rowScanner) (*domain.InterviewRecord, error) {
	var record domain.InterviewRecord
	var questionsJSON, answersJSON []byte
	var jobRole string
	var scores pq.Int64Array
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.SessionID,
		&record.CandidateName,
		&record.CandidateEmail,
		&record.CandidatePhone,
		&record.CompanyName,
		&jobRole,
		&questionsJSON,
		&answersJSON,
		&scores,
		&record.FinalScore,
		&record.Summary,
		&record.CompletedAt,
		&record.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	record.JobRole = domain.JobRole(jobRole)
	record.Scores = make([]int, len(scores))
	for i, s := range scores {
		record.Scores[i] = int(s)
	}

	if err := json.Unmarshal(questionsJSON, &record.Questions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &record.Answers); err != nil {
		return nil, err
	}

	return &record, nil
}
