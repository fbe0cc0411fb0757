package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/session"
	"github.com/raflytch/interview-assistant/pkg/imagekit"
	"github.com/raflytch/interview-assistant/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrResumeRequired    = errors.New("a resume file or resume text is required")
	ErrInvalidResumeFile = errors.New("invalid resume file")
)

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern = regexp.MustCompile(`[\d\s()+-]{10,}`)
)

const maxResumeTextBytes = 64 * 1024

type ResumeStorage interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader, folder string) (*imagekit.UploadResult, error)
	ResumeFileRemover
}

type resumeService struct {
	sessions      domain.SessionService
	storage       ResumeStorage
	fileValidator *validator.FileValidator
	logger        *zap.Logger
}

// NewResumeService extracts candidate details from résumés. storage may be nil
// when no file store is configured.
func NewResumeService(sessions domain.SessionService, storage ResumeStorage, logger *zap.Logger) domain.ResumeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resumeService{
		sessions:      sessions,
		storage:       storage,
		fileValidator: validator.DocumentValidator(),
		logger:        logger,
	}
}

func (s *resumeService) Upload(ctx context.Context, userID uuid.UUID, upload *domain.ResumeUpload) (*domain.ResumeUploadResponse, error) {
	if upload == nil || (upload.File == nil && strings.TrimSpace(upload.ResumeText) == "") {
		return nil, ErrResumeRequired
	}

	current, err := s.sessions.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status := current.Session.Status; status == domain.SessionStatusActive || status == domain.SessionStatusCompleted {
		return nil, session.ErrProfileLocked
	}

	text := upload.ResumeText
	if upload.File != nil {
		if err := s.fileValidator.Validate(upload.File); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidResumeFile, err.Error())
		}
		if strings.TrimSpace(text) == "" && strings.EqualFold(filepath.Ext(upload.File.Filename), ".txt") {
			text, err = readText(upload.File)
			if err != nil {
				return nil, err
			}
		}
	}

	var stored *domain.StoredResume
	if upload.File != nil && s.storage != nil {
		result, err := s.storage.UploadFile(ctx, upload.File, "/resumes/"+userID.String())
		if err != nil {
			return nil, err
		}
		stored = &domain.StoredResume{
			URL:      result.URL,
			FileID:   result.FileID,
			Name:     result.Name,
			Size:     result.Size,
			FileType: result.FileType,
		}
	}

	extracted := ExtractProfile(text)
	profile := extracted
	profile.ResumeText = strings.TrimSpace(text)
	if stored != nil {
		profile.ResumeFileID = stored.FileID
	}

	resp, err := s.sessions.UpdateProfile(ctx, userID, profile)
	if err != nil {
		if stored != nil {
			s.deleteFile(ctx, userID, stored.FileID)
		}
		return nil, err
	}
	if previous := current.Session.Candidate.ResumeFileID; stored != nil && previous != "" && previous != stored.FileID {
		s.deleteFile(ctx, userID, previous)
	}

	missing := resp.Session.Candidate.MissingFields()
	s.logger.Info("resume processed",
		zap.String("user_id", userID.String()),
		zap.Strings("missing_fields", missing),
		zap.Bool("stored", stored != nil),
	)

	return &domain.ResumeUploadResponse{
		Session:       resp.Session,
		Extracted:     extracted,
		MissingFields: missing,
		File:          stored,
	}, nil
}

func (s *resumeService) deleteFile(ctx context.Context, userID uuid.UUID, fileID string) {
	if err := s.storage.DeleteFile(context.WithoutCancel(ctx), fileID); err != nil {
		s.logger.Warn("failed to delete stored resume",
			zap.String("user_id", userID.String()),
			zap.String("file_id", fileID),
			zap.Error(err),
		)
	}
}

// ExtractProfile takes the first non-empty line as the name along with the
// first email and phone-like digit sequence found in text.
func ExtractProfile(text string) domain.CandidateProfile {
	var profile domain.CandidateProfile

	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			profile.Name = line
			break
		}
	}
	profile.Email = emailPattern.FindString(text)
	for _, match := range phonePattern.FindAllString(text, -1) {
		if match = strings.TrimSpace(match); strings.ContainsAny(match, "0123456789") {
			profile.Phone = match
			break
		}
	}

	return profile
}

func readText(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxResumeTextBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}
