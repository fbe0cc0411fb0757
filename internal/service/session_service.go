package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSubmissionInFlight = errors.New("an answer for this question is already being submitted")
	ErrStartInFlight      = errors.New("an interview is already being started")
	ErrSessionChanged     = errors.New("interview session was reset while the request was processed")
)

// startGuardIndex keys the start lock in the submission guard; question
// indexes are never negative.
const startGuardIndex = -1

// ResumeFileRemover deletes stored résumé files.
type ResumeFileRemover interface {
	DeleteFile(ctx context.Context, fileID string) error
}

type sessionService struct {
	store         domain.SessionStore
	guard         domain.SubmissionGuard
	gateway       domain.AIGateway
	interviewRepo domain.InterviewRepository
	quotaService  domain.QuotaService
	files         ResumeFileRemover
	logger        *zap.Logger
	now           func() time.Time
}

func NewSessionService(
	store domain.SessionStore,
	guard domain.SubmissionGuard,
	gateway domain.AIGateway,
	interviewRepo domain.InterviewRepository,
	quotaService domain.QuotaService,
	files ResumeFileRemover,
	logger *zap.Logger,
) domain.SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionService{
		store:         store,
		guard:         guard,
		gateway:       gateway,
		interviewRepo: interviewRepo,
		quotaService:  quotaService,
		files:         files,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *sessionService) Current(ctx context.Context, userID uuid.UUID) (*domain.SessionResponse, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// Resumable never fails; a store error is logged and reported as not resumable.
func (s *sessionService) Resumable(ctx context.Context, userID uuid.UUID) *domain.ResumableResponse {
	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			s.logger.Warn("failed to read session snapshot", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return &domain.ResumableResponse{Resumable: false}
	}
	if !session.IsResumable(snap.Session) {
		return &domain.ResumableResponse{Resumable: false}
	}
	sess := snap.Session
	return &domain.ResumableResponse{Resumable: true, Session: &sess}
}

func (s *sessionService) UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.CandidateProfile) (*domain.SessionResponse, error) {
	profile = domain.CandidateProfile{
		Name:         strings.TrimSpace(profile.Name),
		Email:        strings.TrimSpace(profile.Email),
		Phone:        strings.TrimSpace(profile.Phone),
		CompanyName:  strings.TrimSpace(profile.CompanyName),
		ResumeText:   profile.ResumeText,
		ResumeFileID: profile.ResumeFileID,
	}

	snap, err := s.store.Update(ctx, userID, func(current *domain.InterviewSession) error {
		next, err := session.SetCandidateInfo(*current, profile)
		if err != nil {
			return err
		}
		*current = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(snap.Session), nil
}

func (s *sessionService) SetJobRole(ctx context.Context, userID uuid.UUID, role domain.JobRole) (*domain.SessionResponse, error) {
	snap, err := s.store.Update(ctx, userID, func(current *domain.InterviewSession) error {
		next, err := session.SetJobRole(*current, role)
		if err != nil {
			return err
		}
		*current = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(snap.Session), nil
}

func (s *sessionService) Start(ctx context.Context, userID uuid.UUID) (*domain.SessionResponse, error) {
	acquired, err := s.guard.Acquire(ctx, userID, startGuardIndex)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrStartInFlight
	}
	defer s.release(ctx, userID, startGuardIndex)

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := session.ValidateStart(current); err != nil {
		return nil, err
	}

	if s.quotaService != nil {
		if err := s.quotaService.CheckAndIncrementUsage(ctx, userID, domain.FeatureInterview); err != nil {
			return nil, err
		}
	}

	questions := s.gateway.GenerateQuestionSet(ctx,
		current.Candidate.ResumeText,
		current.JobRole,
		current.Candidate.CompanyName,
	)

	sessionID, err := uuid.NewV7()
	if err != nil {
		s.refundStart(ctx, userID)
		return nil, err
	}

	snap, err := s.store.Update(ctx, userID, func(stored *domain.InterviewSession) error {
		next, err := session.Start(*stored, sessionID.String(), questions, questions[0].TimeLimitSeconds, s.now().UTC())
		if err != nil {
			return err
		}
		*stored = next
		return nil
	})
	if err != nil {
		s.refundStart(ctx, userID)
		return nil, err
	}

	s.logger.Info("interview started",
		zap.String("user_id", userID.String()),
		zap.String("session_id", snap.Session.SessionID),
		zap.String("job_role", string(snap.Session.JobRole)),
	)
	return sessionResponse(snap.Session), nil
}

// refundStart gives back the quota charged for a start that was not stored.
func (s *sessionService) refundStart(ctx context.Context, userID uuid.UUID) {
	if s.quotaService == nil {
		return
	}
	if err := s.quotaService.RefundUsage(context.WithoutCancel(ctx), userID, domain.FeatureInterview); err != nil {
		s.logger.Error("failed to refund interview usage", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// Tick advances the countdown by one second. It does nothing while a
// submission for the current question is in flight. When the time runs out
// the question is force-submitted with draft, or with the no-answer marker
// if draft is blank.
func (s *sessionService) Tick(ctx context.Context, userID uuid.UUID, draft string) (*domain.TickResult, error) {
	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if current.Status != domain.SessionStatusActive {
		return &domain.TickResult{Session: &current}, nil
	}

	index := current.CurrentQuestionIndex
	held, err := s.guard.Held(ctx, userID, index)
	if err != nil {
		return nil, err
	}
	if held {
		return &domain.TickResult{Session: &current, Suppressed: true}, nil
	}

	if session.AwaitingSummary(current) {
		return s.recoverCompletion(ctx, userID, current)
	}

	var expired bool
	snap, err := s.store.Update(ctx, userID, func(stored *domain.InterviewSession) error {
		expired = false
		if stored.SessionID != current.SessionID || stored.CurrentQuestionIndex != index {
			return nil
		}
		next, exp := session.Tick(*stored)
		*stored = next
		expired = exp
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &domain.TickResult{Session: &snap.Session}
	if !expired {
		return result, nil
	}

	answer := strings.TrimSpace(draft)
	if answer == "" {
		answer = session.NoAnswerProvided
	}
	submission, err := s.submit(ctx, userID, current.SessionID, index, answer, true)
	if errors.Is(err, ErrSubmissionInFlight) {
		result.Suppressed = true
		return result, nil
	}
	if errors.Is(err, ErrSessionChanged) {
		return s.supersededTick(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	result.Session = submission.Session
	result.Submission = submission
	return result, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, userID uuid.UUID, questionIndex int, answer string) (*domain.SubmissionResult, error) {
	return s.submit(ctx, userID, "", questionIndex, answer, false)
}

func (s *sessionService) Reset(ctx context.Context, userID uuid.UUID) (*domain.SessionResponse, error) {
	previous, err := s.load(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read session before reset", zap.String("user_id", userID.String()), zap.Error(err))
	}

	if err := s.guard.ReleaseAll(ctx, userID); err != nil {
		s.logger.Warn("failed to release submission guards", zap.String("user_id", userID.String()), zap.Error(err))
	}

	fresh := session.Reset()
	snap, err := s.store.Save(ctx, userID, &fresh)
	if err != nil {
		return nil, err
	}

	if fileID := previous.Candidate.ResumeFileID; fileID != "" && s.files != nil {
		if err := s.files.DeleteFile(context.WithoutCancel(ctx), fileID); err != nil {
			s.logger.Warn("failed to delete stored resume",
				zap.String("user_id", userID.String()),
				zap.String("file_id", fileID),
				zap.Error(err),
			)
		}
	}
	return sessionResponse(snap.Session), nil
}

// submit records an answer for index. A non-empty sessionID pins the write to
// that session.
func (s *sessionService) submit(ctx context.Context, userID uuid.UUID, sessionID string, index int, answer string, forced bool) (*domain.SubmissionResult, error) {
	acquired, err := s.guard.Acquire(ctx, userID, index)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(ctx, userID, index)

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessionID != "" && current.SessionID != sessionID {
		return nil, ErrSessionChanged
	}
	if err := session.ValidateSubmission(current, index); err != nil {
		if errors.Is(err, session.ErrAlreadyAnswered) {
			return &domain.SubmissionResult{Session: &current, Completed: current.Status == domain.SessionStatusCompleted}, nil
		}
		return nil, err
	}

	score := s.gateway.EvaluateAnswer(ctx, current.Questions[index].Text, answer)

	snap, err := s.store.Update(ctx, userID, func(stored *domain.InterviewSession) error {
		if stored.SessionID != current.SessionID {
			return ErrSessionChanged
		}
		next, err := session.SubmitAnswer(*stored, index, answer, score)
		if err != nil {
			return err
		}
		*stored = next
		return nil
	})
	if errors.Is(err, session.ErrAlreadyAnswered) {
		stored, loadErr := s.load(ctx, userID)
		if loadErr != nil {
			return nil, loadErr
		}
		return &domain.SubmissionResult{Session: &stored}, nil
	}
	if err != nil {
		return nil, err
	}

	recorded := snap.Session.Scores[index]
	result := &domain.SubmissionResult{
		Session:  &snap.Session,
		Accepted: true,
		Forced:   forced,
		Score:    &recorded,
	}

	if session.AwaitingSummary(snap.Session) {
		completed, saved, err := s.finalize(ctx, userID, snap.Session)
		if err != nil {
			return nil, err
		}
		result.Session = completed
		result.Completed = completed.Status == domain.SessionStatusCompleted
		result.RecordSaved = saved
	}

	return result, nil
}

// recoverCompletion finishes a session whose last answer was stored but
// whose summary was never written.
func (s *sessionService) recoverCompletion(ctx context.Context, userID uuid.UUID, current domain.InterviewSession) (*domain.TickResult, error) {
	index := current.CurrentQuestionIndex
	acquired, err := s.guard.Acquire(ctx, userID, index)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return &domain.TickResult{Session: &current, Suppressed: true}, nil
	}
	defer s.release(ctx, userID, index)

	completed, saved, err := s.finalize(ctx, userID, current)
	if errors.Is(err, ErrSessionChanged) {
		return s.supersededTick(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &domain.TickResult{
		Session: completed,
		Submission: &domain.SubmissionResult{
			Session:     completed,
			Completed:   completed.Status == domain.SessionStatusCompleted,
			RecordSaved: saved,
		},
	}, nil
}

// supersededTick reports the session that replaced the one being ticked.
func (s *sessionService) supersededTick(ctx context.Context, userID uuid.UUID) (*domain.TickResult, error) {
	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.TickResult{Session: &current, Suppressed: true}, nil
}

func (s *sessionService) finalize(ctx context.Context, userID uuid.UUID, sess domain.InterviewSession) (*domain.InterviewSession, *bool, error) {
	summary := s.gateway.SummarizeInterview(ctx, session.BuildTranscript(sess))

	snap, err := s.store.Update(ctx, userID, func(stored *domain.InterviewSession) error {
		if stored.SessionID != sess.SessionID {
			return ErrSessionChanged
		}
		next, err := session.Complete(*stored, summary.FinalScore, summary.Text, s.now().UTC())
		if err != nil {
			return err
		}
		*stored = next
		return nil
	})
	if errors.Is(err, session.ErrInterviewCompleted) {
		stored, loadErr := s.load(ctx, userID)
		if loadErr != nil {
			return nil, nil, loadErr
		}
		return &stored, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	completed := snap.Session
	saved := s.saveRecord(ctx, userID, completed)

	s.logger.Info("interview completed",
		zap.String("user_id", userID.String()),
		zap.String("session_id", completed.SessionID),
		zap.Int("final_score", *completed.FinalScore),
		zap.Bool("record_saved", saved),
	)
	return &completed, &saved, nil
}

func (s *sessionService) release(ctx context.Context, userID uuid.UUID, index int) {
	if err := s.guard.Release(context.WithoutCancel(ctx), userID, index); err != nil {
		s.logger.Warn("failed to release submission guard", zap.String("user_id", userID.String()), zap.Int("question_index", index), zap.Error(err))
	}
}

func (s *sessionService) saveRecord(ctx context.Context, userID uuid.UUID, sess domain.InterviewSession) bool {
	if s.interviewRepo == nil {
		return false
	}

	record := buildRecord(userID, sess)
	if err := s.interviewRepo.Create(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("failed to save interview record",
			zap.String("user_id", userID.String()),
			zap.String("session_id", sess.SessionID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func buildRecord(userID uuid.UUID, sess domain.InterviewSession) *domain.InterviewRecord {
	transcript := session.BuildTranscript(sess)
	answers := make([]string, len(transcript.QA))
	for i, qa := range transcript.QA {
		answers[i] = qa.Answer
	}

	completedAt := time.Now().UTC()
	if sess.CompletedAt != nil {
		completedAt = *sess.CompletedAt
	}
	finalScore := 0
	if sess.FinalScore != nil {
		finalScore = *sess.FinalScore
	}

	return &domain.InterviewRecord{
		ID:             uuid.New(),
		UserID:         userID,
		SessionID:      sess.SessionID,
		CandidateName:  sess.Candidate.Name,
		CandidateEmail: sess.Candidate.Email,
		CandidatePhone: sess.Candidate.Phone,
		CompanyName:    sess.Candidate.CompanyName,
		JobRole:        sess.JobRole,
		Questions:      sess.Questions,
		Answers:        answers,
		Scores:         transcript.Scores,
		FinalScore:     finalScore,
		Summary:        sess.SummaryText,
		CompletedAt:    completedAt,
	}
}

func (s *sessionService) load(ctx context.Context, userID uuid.UUID) (domain.InterviewSession, error) {
	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return session.New(), nil
		}
		return domain.InterviewSession{}, err
	}
	return snap.Session, nil
}

func sessionResponse(sess domain.InterviewSession) *domain.SessionResponse {
	return &domain.SessionResponse{
		Session:         &sess,
		CurrentQuestion: session.CurrentQuestion(sess),
	}
}
