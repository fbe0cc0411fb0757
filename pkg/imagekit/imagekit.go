package imagekit

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/raflytch/interview-assistant/pkg/validator"

	"github.com/google/uuid"
	"github.com/imagekit-developer/imagekit-go/v2"
	"github.com/imagekit-developer/imagekit-go/v2/option"
)

type Config struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
}

type Client struct {
	ik        imagekit.Client
	validator *validator.FileValidator
}

type UploadResult struct {
	URL      string `json:"url"`
	FileID   string `json:"file_id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	FileType string `json:"file_type"`
}

// NewClient stores uploaded résumés; opts override the SDK defaults, mostly for tests.
func NewClient(config Config, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithPrivateKey(config.PrivateKey)}, opts...)

	return &Client{
		ik:        imagekit.NewClient(opts...),
		validator: validator.DocumentValidator(),
	}
}

func (c *Client) SetValidator(v *validator.FileValidator) {
	c.validator = v
}

func (c *Client) Validate(file *multipart.FileHeader) error {
	return c.validator.Validate(file)
}

func (c *Client) UploadFile(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	if err := c.Validate(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	uniqueFileName := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)

	resp, err := c.ik.Files.Upload(ctx, imagekit.FileUploadParams{
		File:     io.Reader(src),
		FileName: uniqueFileName,
		Folder:   imagekit.String(folder),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to ImageKit: %w", err)
	}

	return &UploadResult{
		URL:      resp.URL,
		FileID:   resp.FileID,
		Name:     resp.Name,
		Size:     int64(resp.Size),
		FileType: resp.FileType,
	}, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return nil
	}

	if err := c.ik.Files.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file from ImageKit: %w", err)
	}
	return nil
}
