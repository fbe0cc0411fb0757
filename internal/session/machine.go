package session

import (
	"errors"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
)

// NoAnswerProvided is recorded when the countdown expires before a submission.
const NoAnswerProvided = "No answer provided (time expired)"

var (
	ErrProfileLocked       = errors.New("candidate profile cannot change during or after an interview")
	ErrProfileIncomplete   = errors.New("name, email and phone are required before starting")
	ErrJobRoleRequired     = errors.New("job role is required before starting")
	ErrInvalidQuestionSet  = errors.New("an interview needs six questions ordered easy, easy, medium, medium, hard, hard")
	ErrInterviewInProgress = errors.New("interview already in progress")
	ErrInterviewCompleted  = errors.New("interview already completed")
	ErrNotActive           = errors.New("interview is not active")
	ErrAlreadyAnswered     = errors.New("question already answered")
	ErrQuestionOutOfRange  = errors.New("question index is not the current question")
	ErrAnswersMissing      = errors.New("all six answers are required to complete")
)

func New() domain.InterviewSession {
	return domain.InterviewSession{
		Answers: map[int]string{},
		Scores:  map[int]int{},
		Status:  domain.SessionStatusNotStarted,
	}
}

func Reset() domain.InterviewSession {
	return New()
}

func SetCandidateInfo(s domain.InterviewSession, profile domain.CandidateProfile) (domain.InterviewSession, error) {
	if s.Status == domain.SessionStatusActive || s.Status == domain.SessionStatusCompleted {
		return s, ErrProfileLocked
	}

	next := clone(s)
	next.Candidate.Name = mergeField(next.Candidate.Name, profile.Name)
	next.Candidate.Email = mergeField(next.Candidate.Email, profile.Email)
	next.Candidate.Phone = mergeField(next.Candidate.Phone, profile.Phone)
	next.Candidate.CompanyName = mergeField(next.Candidate.CompanyName, profile.CompanyName)
	next.Candidate.ResumeText = mergeField(next.Candidate.ResumeText, profile.ResumeText)
	next.Candidate.ResumeFileID = mergeField(next.Candidate.ResumeFileID, profile.ResumeFileID)

	switch {
	case next.Candidate.Complete():
		next.Status = domain.SessionStatusReadyToStart
	case !next.Candidate.Empty():
		next.Status = domain.SessionStatusAwaitingResumeUpload
	}
	return next, nil
}

func SetJobRole(s domain.InterviewSession, role domain.JobRole) (domain.InterviewSession, error) {
	if err := ensureBeforeStart(s); err != nil {
		return s, err
	}
	if role == "" {
		return s, ErrJobRoleRequired
	}

	next := clone(s)
	next.JobRole = role
	return next, nil
}

// ValidateStart reports whether s could start once a question set is available.
func ValidateStart(s domain.InterviewSession) error {
	if err := ensureBeforeStart(s); err != nil {
		return err
	}
	if !s.Candidate.Complete() {
		return ErrProfileIncomplete
	}
	if s.JobRole == "" {
		return ErrJobRoleRequired
	}
	return nil
}

func Start(s domain.InterviewSession, sessionID string, questions []domain.Question, initialTimeLimit int, now time.Time) (domain.InterviewSession, error) {
	if err := ValidateStart(s); err != nil {
		return s, err
	}
	if !validQuestionSet(questions) {
		return s, ErrInvalidQuestionSet
	}
	if initialTimeLimit <= 0 {
		initialTimeLimit = questions[0].TimeLimitSeconds
	}

	next := clone(s)
	next.SessionID = sessionID
	next.Questions = append([]domain.Question(nil), questions...)
	next.CurrentQuestionIndex = 0
	next.Answers = map[int]string{}
	next.Scores = map[int]int{}
	next.TimeRemainingSeconds = initialTimeLimit
	next.Status = domain.SessionStatusActive
	next.FinalScore = nil
	next.SummaryText = ""
	next.CompletedAt = nil
	started := now
	next.StartedAt = &started
	return next, nil
}

// Tick advances the countdown by one second. expired reports that the current
// question ran out of time and must be force-submitted.
func Tick(s domain.InterviewSession) (next domain.InterviewSession, expired bool) {
	if s.Status != domain.SessionStatusActive || AwaitingSummary(s) {
		return s, false
	}
	if _, answered := s.Answers[s.CurrentQuestionIndex]; answered {
		return s, false
	}

	next = clone(s)
	if next.TimeRemainingSeconds > 0 {
		next.TimeRemainingSeconds--
	}
	return next, next.TimeRemainingSeconds == 0
}

func SubmitAnswer(s domain.InterviewSession, index int, answer string, score int) (domain.InterviewSession, error) {
	if err := ValidateSubmission(s, index); err != nil {
		return s, err
	}

	next := clone(s)
	next.Answers[index] = answer
	next.Scores[index] = clamp(score, 0, 10)

	if index == len(next.Questions)-1 {
		next.TimeRemainingSeconds = 0
		return next, nil
	}

	next.CurrentQuestionIndex = index + 1
	next.TimeRemainingSeconds = next.Questions[next.CurrentQuestionIndex].TimeLimitSeconds
	return next, nil
}

// ValidateSubmission checks whether an answer for index would be accepted.
func ValidateSubmission(s domain.InterviewSession, index int) error {
	switch s.Status {
	case domain.SessionStatusActive:
	case domain.SessionStatusCompleted:
		return ErrAlreadyAnswered
	default:
		return ErrNotActive
	}
	if index < 0 || index >= len(s.Questions) {
		return ErrQuestionOutOfRange
	}
	if _, answered := s.Answers[index]; answered || index < s.CurrentQuestionIndex {
		return ErrAlreadyAnswered
	}
	if index != s.CurrentQuestionIndex {
		return ErrQuestionOutOfRange
	}
	return nil
}

func Complete(s domain.InterviewSession, finalScore int, summary string, now time.Time) (domain.InterviewSession, error) {
	if s.Status == domain.SessionStatusCompleted {
		return s, ErrInterviewCompleted
	}
	if s.Status != domain.SessionStatusActive {
		return s, ErrNotActive
	}
	if !AwaitingSummary(s) {
		return s, ErrAnswersMissing
	}

	next := clone(s)
	score := clamp(finalScore, 0, 100)
	completed := now
	next.FinalScore = &score
	next.SummaryText = summary
	next.CompletedAt = &completed
	next.TimeRemainingSeconds = 0
	next.Status = domain.SessionStatusCompleted
	return next, nil
}

// AwaitingSummary reports that every question is answered but the session is
// not yet completed.
func AwaitingSummary(s domain.InterviewSession) bool {
	if s.Status != domain.SessionStatusActive || len(s.Questions) != domain.QuestionCount {
		return false
	}
	for i := range s.Questions {
		if _, ok := s.Answers[i]; !ok {
			return false
		}
	}
	return true
}

func IsResumable(s domain.InterviewSession) bool {
	return s.Status == domain.SessionStatusActive
}

func CurrentQuestion(s domain.InterviewSession) *domain.Question {
	if s.Status != domain.SessionStatusActive || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	q := s.Questions[s.CurrentQuestionIndex]
	return &q
}

func BuildTranscript(s domain.InterviewSession) domain.Transcript {
	transcript := domain.Transcript{
		QA:     make([]domain.QA, len(s.Questions)),
		Scores: make([]int, 0, len(s.Scores)),
	}
	for i, q := range s.Questions {
		transcript.QA[i] = domain.QA{Question: q.Text, Answer: s.Answers[i]}
		if score, ok := s.Scores[i]; ok {
			transcript.Scores = append(transcript.Scores, score)
		}
	}
	return transcript
}

func ensureBeforeStart(s domain.InterviewSession) error {
	switch s.Status {
	case domain.SessionStatusActive:
		return ErrInterviewInProgress
	case domain.SessionStatusCompleted:
		return ErrInterviewCompleted
	}
	return nil
}

func validQuestionSet(questions []domain.Question) bool {
	if len(questions) != domain.QuestionCount {
		return false
	}
	for i, q := range questions {
		if q.Difficulty != domain.QuestionPlan[i] || q.TimeLimitSeconds <= 0 {
			return false
		}
	}
	return true
}

func mergeField(current, incoming string) string {
	if incoming == "" {
		return current
	}
	return incoming
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clone(s domain.InterviewSession) domain.InterviewSession {
	next := s
	if s.Questions != nil {
		next.Questions = append([]domain.Question(nil), s.Questions...)
	}
	next.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	next.Scores = make(map[int]int, len(s.Scores))
	for k, v := range s.Scores {
		next.Scores[k] = v
	}
	if s.FinalScore != nil {
		score := *s.FinalScore
		next.FinalScore = &score
	}
	return next
}
