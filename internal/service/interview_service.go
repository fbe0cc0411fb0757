package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInterviewNotFound = errors.New("interview not found")
	ErrInvalidSortField  = errors.New("sort must be one of final_score, candidate_name, completed_at")
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type interviewService struct {
	interviewRepo domain.InterviewRepository
}

func NewInterviewService(interviewRepo domain.InterviewRepository) domain.InterviewService {
	return &interviewService{interviewRepo: interviewRepo}
}

func (s *interviewService) List(ctx context.Context, search string, role domain.JobRole, sortBy domain.InterviewSortField, desc bool, page, limit int) (*domain.PaginatedInterviews, error) {
	switch sortBy {
	case "":
		sortBy = domain.SortByCompletedAt
	case domain.SortByFinalScore, domain.SortByCandidateName, domain.SortByCompletedAt:
	default:
		return nil, ErrInvalidSortField
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := domain.InterviewFilter{
		Search:  search,
		JobRole: role,
		SortBy:  sortBy,
		Desc:    desc,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	records, err := s.interviewRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.interviewRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	avg, err := s.interviewRepo.AverageFinalScore(ctx, filter)
	if err != nil {
		return nil, err
	}
	average, err := decimal.NewFromString(avg)
	if err != nil {
		return nil, fmt.Errorf("invalid average score %q: %w", avg, err)
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &domain.PaginatedInterviews{
		Interviews:   records,
		AverageScore: average.StringFixed(1),
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *interviewService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InterviewRecord, error) {
	record, err := s.interviewRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *interviewService) GeneratePDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return renderInterviewReport(record)
}

func (s *interviewService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.interviewRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInterviewNotFound
		}
		return err
	}
	return nil
}

func renderInterviewReport(record *domain.InterviewRecord) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Interview Report - "+record.CandidateName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 8, tr(record.CandidateName))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, tr(fmt.Sprintf("%s  |  %s", record.CandidateEmail, record.CandidatePhone)))
	pdf.Ln(5)

	position := string(record.JobRole)
	if record.CompanyName != "" {
		position += " at " + record.CompanyName
	}
	pdf.Cell(0, 5, tr(fmt.Sprintf("%s  |  Completed %s", position, record.CompletedAt.Format("2 Jan 2006 15:04 MST"))))
	pdf.Ln(9)

	addReportSection(pdf, "OVERALL")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 6, fmt.Sprintf("Final Score: %d / 100", record.FinalScore))
	pdf.Ln(7)
	if record.Summary != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4, tr(record.Summary), "", "", false)
	}
	pdf.Ln(4)

	addReportSection(pdf, "QUESTIONS")
	for i, q := range record.Questions {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(string(q.Difficulty)), q.Text)), "", "", false)

		pdf.SetFont("Helvetica", "", 9)
		answer := ""
		if i < len(record.Answers) {
			answer = record.Answers[i]
		}
		pdf.MultiCell(0, 4, tr(answer), "", "", false)

		if i < len(record.Scores) {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.Cell(0, 5, fmt.Sprintf("Score: %d/10", record.Scores[i]))
			pdf.Ln(5)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addReportSection(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 6, title)
	pdf.Ln(6)
	pdf.SetDrawColor(100, 100, 100)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(3)
}
