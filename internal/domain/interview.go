package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusNotStarted           SessionStatus = "not_started"
	SessionStatusAwaitingResumeUpload SessionStatus = "awaiting_resume_upload"
	SessionStatusReadyToStart         SessionStatus = "ready_to_start"
	SessionStatusActive               SessionStatus = "active"
	SessionStatusCompleted            SessionStatus = "completed"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const QuestionCount = 6

// QuestionPlan is the fixed difficulty order of a session.
var QuestionPlan = [QuestionCount]Difficulty{
	DifficultyEasy, DifficultyEasy,
	DifficultyMedium, DifficultyMedium,
	DifficultyHard, DifficultyHard,
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TimeLimitFor returns the answer budget in seconds for a difficulty tier.
func TimeLimitFor(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyMedium:
		return 60
	case DifficultyHard:
		return 120
	default:
		return 60
	}
}

type Question struct {
	Text             string     `json:"text"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"time_limit"`
}

type CandidateProfile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name,omitempty"`
	ResumeText  string `json:"resume_text,omitempty"`

	// ResumeFileID names the stored résumé file, if one was uploaded.
	ResumeFileID string `json:"resume_file_id,omitempty"`
}

func (p CandidateProfile) Complete() bool {
	return p.Name != "" && p.Email != "" && p.Phone != ""
}

func (p CandidateProfile) MissingFields() []string {
	missing := make([]string, 0, 3)
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Email == "" {
		missing = append(missing, "email")
	}
	if p.Phone == "" {
		missing = append(missing, "phone")
	}
	return missing
}

func (p CandidateProfile) Empty() bool {
	return p.Name == "" && p.Email == "" && p.Phone == "" && p.CompanyName == "" && p.ResumeText == ""
}

type InterviewSession struct {
	SessionID            string           `json:"session_id"`
	Candidate            CandidateProfile `json:"candidate"`
	JobRole              JobRole          `json:"job_role"`
	Questions            []Question       `json:"questions"`
	CurrentQuestionIndex int              `json:"current_question_index"`
	Answers              map[int]string   `json:"answers"`
	Scores               map[int]int      `json:"scores"`
	TimeRemainingSeconds int              `json:"time_remaining"`
	Status               SessionStatus    `json:"status"`
	FinalScore           *int             `json:"final_score,omitempty"`
	SummaryText          string           `json:"summary,omitempty"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
}

type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Transcript struct {
	QA     []QA  `json:"qa"`
	Scores []int `json:"scores"`
}

type Summary struct {
	FinalScore int    `json:"finalScore"`
	Text       string `json:"summary"`
}

// Snapshot is the persisted envelope of a session.
type Snapshot struct {
	Version  int              `json:"version"`
	Revision int64            `json:"revision"`
	SavedAt  time.Time        `json:"saved_at"`
	Session  InterviewSession `json:"session"`
}

type InterviewRecord struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	SessionID      string     `json:"session_id"`
	CandidateName  string     `json:"candidate_name"`
	CandidateEmail string     `json:"candidate_email"`
	CandidatePhone string     `json:"candidate_phone"`
	CompanyName    string     `json:"company_name"`
	JobRole        JobRole    `json:"job_role"`
	Questions      []Question `json:"questions"`
	Answers        []string   `json:"answers"`
	Scores         []int      `json:"scores"`
	FinalScore     int        `json:"final_score"`
	Summary        string     `json:"summary"`
	CompletedAt    time.Time  `json:"completed_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

type InterviewSortField string

const (
	SortByFinalScore    InterviewSortField = "final_score"
	SortByCandidateName InterviewSortField = "candidate_name"
	SortByCompletedAt   InterviewSortField = "completed_at"
)

type InterviewFilter struct {
	Search  string
	JobRole JobRole
	SortBy  InterviewSortField
	Desc    bool
	Limit   int
	Offset  int
}

type PaginatedInterviews struct {
	Interviews   []InterviewRecord `json:"interviews"`
	AverageScore string            `json:"average_score"`
	Pagination   Pagination        `json:"pagination"`
}

type UpdateProfileRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,min=10,max=20,phone"`
	CompanyName string `json:"company_name" validate:"omitempty,max=255"`
}

type SetJobRoleRequest struct {
	JobRole JobRole `json:"job_role" validate:"required,jobrole"`
}

// TickRequest optionally carries the unsent answer draft, which is submitted
// in place of the no-answer marker when the countdown runs out.
type TickRequest struct {
	Draft string `json:"draft" validate:"max=10000"`
}

type SubmitAnswerRequest struct {
	QuestionIndex *int   `json:"question_index" validate:"required,min=0,max=5"`
	Answer        string `json:"answer" validate:"required,max=10000"`
}

type SessionResponse struct {
	Session         *InterviewSession `json:"session"`
	CurrentQuestion *Question         `json:"current_question,omitempty"`
}

type ResumableResponse struct {
	Resumable bool              `json:"resumable"`
	Session   *InterviewSession `json:"session,omitempty"`
}

type SubmissionResult struct {
	Session     *InterviewSession `json:"session"`
	Accepted    bool              `json:"accepted"`
	Forced      bool              `json:"forced"`
	Score       *int              `json:"score,omitempty"`
	Completed   bool              `json:"completed"`
	RecordSaved *bool             `json:"record_saved,omitempty"`
}

type TickResult struct {
	Session    *InterviewSession `json:"session"`
	Suppressed bool              `json:"suppressed"`
	Submission *SubmissionResult `json:"submission,omitempty"`
}

type SessionStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
	Save(ctx context.Context, userID uuid.UUID, session *InterviewSession) (*Snapshot, error)
	Update(ctx context.Context, userID uuid.UUID, fn func(*InterviewSession) error) (*Snapshot, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type SubmissionGuard interface {
	Acquire(ctx context.Context, userID uuid.UUID, questionIndex int) (bool, error)
	Release(ctx context.Context, userID uuid.UUID, questionIndex int) error
	Held(ctx context.Context, userID uuid.UUID, questionIndex int) (bool, error)
	ReleaseAll(ctx context.Context, userID uuid.UUID) error
}

type InterviewRepository interface {
	Create(ctx context.Context, record *InterviewRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*InterviewRecord, error)
	List(ctx context.Context, filter InterviewFilter) ([]InterviewRecord, error)
	Count(ctx context.Context, filter InterviewFilter) (int64, error)
	AverageFinalScore(ctx context.Context, filter InterviewFilter) (string, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type AIGateway interface {
	GenerateQuestion(ctx context.Context, difficulty Difficulty, questionNumber int, resumeContext string, role JobRole, companyName string) Question
	GenerateQuestionSet(ctx context.Context, resumeContext string, role JobRole, companyName string) []Question
	EvaluateAnswer(ctx context.Context, question, answer string) int
	SummarizeInterview(ctx context.Context, transcript Transcript) Summary
}

type SessionService interface {
	Current(ctx context.Context, userID uuid.UUID) (*SessionResponse, error)
	Resumable(ctx context.Context, userID uuid.UUID) *ResumableResponse
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile CandidateProfile) (*SessionResponse, error)
	SetJobRole(ctx context.Context, userID uuid.UUID, role JobRole) (*SessionResponse, error)
	Start(ctx context.Context, userID uuid.UUID) (*SessionResponse, error)
	Tick(ctx context.Context, userID uuid.UUID, draft string) (*TickResult, error)
	SubmitAnswer(ctx context.Context, userID uuid.UUID, questionIndex int, answer string) (*SubmissionResult, error)
	Reset(ctx context.Context, userID uuid.UUID) (*SessionResponse, error)
}

type InterviewService interface {
	List(ctx context.Context, search string, role JobRole, sortBy InterviewSortField, desc bool, page, limit int) (*PaginatedInterviews, error)
	GetByID(ctx context.Context, id uuid.UUID) (*InterviewRecord, error)
	GeneratePDF(ctx context.Context, id uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
