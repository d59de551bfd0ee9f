package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"automlcli/internal/wizard"
	"automlcli/pkg/contracts/domain"
)

// PlatformAPI is the client-side view of the platform collaborators.
// WizardService depends on this interface; PlatformClient is the real
// implementation and tests substitute a mock.
type PlatformAPI interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*domain.UploadResult, error)
	Preview(ctx context.Context, datasetID string, stage wizard.ProcessingStage) (*domain.PreviewPage, error)
	HandleMissingValues(ctx context.Context, datasetID string, strategy domain.MissingValueStrategy) (*domain.CleanResult, error)
	SaveFeatures(ctx context.Context, selection domain.FeatureSelection) (*domain.FeatureSelection, error)
	Preprocess(ctx context.Context, datasetID, normalization, balancing string) (*domain.PreprocessResult, error)
}

// PlatformClient talks to the remote training platform over HTTP JSON.
// Every call surfaces a terminal success or failure; retry policy
// belongs to the caller.
type PlatformClient struct {
	baseURL     string
	client      *http.Client
	logger      *slog.Logger
	previewRows int
}

// NewPlatformClient creates a platform client for the given base URL.
func NewPlatformClient(baseURL string, timeout time.Duration, logger *slog.Logger) *PlatformClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PlatformClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		logger:      logger.With(slog.String("component", "services.platform_client")),
		previewRows: 50,
	}
}

// SetPreviewRows overrides how many rows each preview request asks for.
func (c *PlatformClient) SetPreviewRows(rows int) {
	if rows > 0 {
		c.previewRows = rows
	}
}

// Upload streams a dataset file to the platform and returns the stored
// dataset id plus its overview statistics.
func (c *PlatformClient) Upload(ctx context.Context, filename string, file io.Reader) (*domain.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/datasets/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result domain.UploadResult
	if err := c.do(req, "upload", &result); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", result.DatasetID),
		slog.String("filename", filename))
	return &result, nil
}

// Preview fetches the preview page for one (dataset, stage) pair.
// Implements wizard.PreviewFetcher.
func (c *PlatformClient) Preview(ctx context.Context, datasetID string, stage wizard.ProcessingStage) (*domain.PreviewPage, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/preview?stage=%s&rows=%d",
		c.baseURL, url.PathEscape(datasetID), url.QueryEscape(string(stage)), c.previewRows)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview request: %w", err)
	}

	var page domain.PreviewPage
	if err := c.do(req, "preview", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HandleMissingValues asks the platform to apply a missing-value
// strategy; the server advances the dataset to the cleaned stage.
func (c *PlatformClient) HandleMissingValues(ctx context.Context, datasetID string, strategy domain.MissingValueStrategy) (*domain.CleanResult, error) {
	body := map[string]string{"strategy": string(strategy)}
	var result domain.CleanResult
	if err := c.postJSON(ctx, fmt.Sprintf("/datasets/%s/missing-values", url.PathEscape(datasetID)), "missing-values", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveFeatures confirms the target column and feature selection; the
// server advances the dataset to the final stage.
func (c *PlatformClient) SaveFeatures(ctx context.Context, selection domain.FeatureSelection) (*domain.FeatureSelection, error) {
	var result domain.FeatureSelection
	if err := c.postJSON(ctx, fmt.Sprintf("/datasets/%s/features", url.PathEscape(selection.DatasetID)), "features", selection, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Preprocess runs normalization and balancing; the server advances the
// dataset to the processed stage.
func (c *PlatformClient) Preprocess(ctx context.Context, datasetID, normalization, balancing string) (*domain.PreprocessResult, error) {
	body := map[string]string{
		"normalization": normalization,
		"balancing":     balancing,
	}
	var result domain.PreprocessResult
	if err := c.postJSON(ctx, fmt.Sprintf("/datasets/%s/preprocess", url.PathEscape(datasetID)), "preprocess", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// postJSON sends a JSON POST to the platform and decodes the response.
func (c *PlatformClient) postJSON(ctx context.Context, path, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, out)
}

// do executes a request and decodes the JSON response into out.
// Non-2xx responses become CollaboratorError with the response body as
// the message.
func (c *PlatformClient) do(req *http.Request, endpoint string, out interface{}) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(req.Context(), "platform request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("platform %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WarnContext(req.Context(), "platform returned error status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode))
		return &CollaboratorError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}

	c.logger.DebugContext(req.Context(), "platform request completed",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("duration", time.Since(start).String()))
	return nil
}
