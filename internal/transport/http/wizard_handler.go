package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "automlcli/internal/errors"
	"automlcli/internal/middleware"
	"automlcli/internal/services"
	"automlcli/internal/wizard"
	"automlcli/pkg/contracts/domain"
)

// defaultMaxUploadBytes caps dataset uploads at 64 MiB unless
// configured otherwise.
const defaultMaxUploadBytes = 64 << 20

var validate = validator.New()

// WizardHandler handles the wizard HTTP surface.
type WizardHandler struct {
	service        WizardServiceInterface
	logger         *slog.Logger
	maxUploadBytes int64
	uploadField    string
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(service WizardServiceInterface, logger *slog.Logger) *WizardHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WizardHandler{
		service:        service,
		logger:         logger.With(slog.String("handler", "wizard")),
		maxUploadBytes: defaultMaxUploadBytes,
		uploadField:    "file",
	}
}

// SetUploadPolicy overrides the upload size cap and the multipart field
// name the dataset file is expected under.
func (h *WizardHandler) SetUploadPolicy(maxBytes int64, fieldName string) {
	if maxBytes > 0 {
		h.maxUploadBytes = maxBytes
	}
	if fieldName != "" {
		h.uploadField = fieldName
	}
}

// Routes returns a chi router for the wizard endpoints.
func (h *WizardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/tabs", h.GetTabs)
	r.Get("/session", h.GetSession)
	r.Get("/preview", h.GetPreview)
	r.Post("/preview/refresh", h.RefreshPreview)
	r.Post("/upload", h.Upload)
	r.Post("/clean", h.Clean)
	r.Post("/features", h.SaveFeatures)
	r.Post("/preprocess", h.Preprocess)

	return r
}

// TabsResponse lists every wizard tab with its gate verdict.
type TabsResponse struct {
	Tabs      []services.TabStatus `json:"tabs"`
	ActiveTab wizard.Tab           `json:"active_tab"`
}

// GetTabs handles GET /api/wizard/tabs
func (h *WizardHandler) GetTabs(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, TabsResponse{
		Tabs:      h.service.Tabs(),
		ActiveTab: h.service.ActiveTab(),
	})
}

// GetSession handles GET /api/wizard/session
func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Snapshot())
}

// GetPreview handles GET /api/wizard/preview?stage=
func (h *WizardHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	stage := wizard.ProcessingStage(r.URL.Query().Get("stage"))
	if stage != "" && !stage.Valid() {
		h.renderError(w, r, apierrors.ErrValidation("stage", "unknown processing stage"))
		return
	}

	start := time.Now()
	entry, err := h.service.Preview(r.Context(), stage)
	middleware.RecordPreviewFetchMetrics(r.Context(), h.service.Snapshot().DatasetID, string(stage), time.Since(start), err == nil)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, entry)
}

// RefreshPreview handles POST /api/wizard/preview/refresh?stage=
func (h *WizardHandler) RefreshPreview(w http.ResponseWriter, r *http.Request) {
	stage := wizard.ProcessingStage(r.URL.Query().Get("stage"))
	if stage != "" && !stage.Valid() {
		h.renderError(w, r, apierrors.ErrValidation("stage", "unknown processing stage"))
		return
	}

	start := time.Now()
	entry, err := h.service.RefreshPreview(r.Context(), stage)
	middleware.RecordPreviewFetchMetrics(r.Context(), h.service.Snapshot().DatasetID, string(stage), time.Since(start), err == nil)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, entry)
}

// Upload handles POST /api/wizard/upload (multipart form, field "file")
func (h *WizardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.renderError(w, r, apierrors.ErrValidation("file", "request is not a valid multipart upload"))
		return
	}

	file, header, err := r.FormFile(h.uploadField)
	if err != nil {
		h.renderError(w, r, apierrors.ErrValidation("file", "dataset file is required"))
		return
	}
	defer file.Close()

	snap, err := h.service.Upload(r.Context(), header.Filename, file)
	middleware.RecordUploadMetrics(r.Context(), header.Size, err == nil)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, snap)
}

// CleanRequest asks for a missing-value strategy to be applied.
type CleanRequest struct {
	Strategy string `json:"strategy" validate:"required,oneof=drop_rows mean_impute mode_impute"`
}

// Bind implements render.Binder.
func (c *CleanRequest) Bind(*http.Request) error {
	return validate.Struct(c)
}

// Clean handles POST /api/wizard/clean
func (h *WizardHandler) Clean(w http.ResponseWriter, r *http.Request) {
	req := &CleanRequest{}
	if err := render.Bind(r, req); err != nil {
		h.renderError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	snap, err := h.service.Clean(r.Context(), domain.MissingValueStrategy(req.Strategy))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// FeaturesRequest confirms the target column and feature selection.
type FeaturesRequest struct {
	TargetColumn  string   `json:"target_column" validate:"required"`
	ColumnsToKeep []string `json:"columns_to_keep" validate:"required,min=1,dive,required"`
}

// Bind implements render.Binder.
func (f *FeaturesRequest) Bind(*http.Request) error {
	return validate.Struct(f)
}

// SaveFeatures handles POST /api/wizard/features
func (h *WizardHandler) SaveFeatures(w http.ResponseWriter, r *http.Request) {
	req := &FeaturesRequest{}
	if err := render.Bind(r, req); err != nil {
		h.renderError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	snap, err := h.service.SaveFeatures(r.Context(), req.TargetColumn, req.ColumnsToKeep)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// PreprocessRequest configures normalization and balancing.
type PreprocessRequest struct {
	Normalization string `json:"normalization" validate:"omitempty,oneof=none minmax standard"`
	Balancing     string `json:"balancing" validate:"omitempty,oneof=none smote undersample"`
}

// Bind implements render.Binder.
func (p *PreprocessRequest) Bind(*http.Request) error {
	return validate.Struct(p)
}

// Preprocess handles POST /api/wizard/preprocess
func (h *WizardHandler) Preprocess(w http.ResponseWriter, r *http.Request) {
	req := &PreprocessRequest{}
	if err := render.Bind(r, req); err != nil {
		h.renderError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	snap, err := h.service.Preprocess(r.Context(), req.Normalization, req.Balancing)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// renderError maps service and wizard errors onto the API error
// taxonomy. Gate violations are caller bugs, not user mistakes, so
// they surface as conflicts with a diagnostic code.
func (h *WizardHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		h.render(w, r, apiErr)
		return
	}

	var gateErr *wizard.GateViolationError
	if errors.As(err, &gateErr) {
		h.logger.ErrorContext(r.Context(), "gate violation reached the handler",
			slog.String("tab", string(gateErr.Tab)),
			slog.String("reason", gateErr.Reason))
		h.render(w, r, apierrors.NewWithDetails(http.StatusConflict, "GATE_VIOLATION", "Action is not available yet", gateErr.Reason))
		return
	}

	var fetchErr *wizard.PreviewFetchError
	if errors.As(err, &fetchErr) {
		middleware.RecordSystemError(r.Context(), "preview_fetch", "platform")
		h.render(w, r, apierrors.NewWithDetails(http.StatusBadGateway, "PREVIEW_FETCH_FAILED",
			"Failed to fetch preview for stage "+string(fetchErr.Stage), fetchErr.Err.Error()))
		return
	}

	var collabErr *services.CollaboratorError
	if errors.As(err, &collabErr) {
		h.render(w, r, apierrors.NewWithDetails(http.StatusBadGateway, "PLATFORM_ERROR",
			"The training platform rejected the request", collabErr.Error()))
		return
	}

	if errors.Is(err, services.ErrInvalidStrategy) || errors.Is(err, services.ErrInvalidInput) {
		h.render(w, r, apierrors.New(http.StatusBadRequest, "INVALID_REQUEST", err.Error()))
		return
	}

	h.logger.ErrorContext(r.Context(), "unhandled service error",
		slog.String("error", err.Error()))
	middleware.RecordSystemError(r.Context(), "internal", "wizard_handler")
	h.render(w, r, apierrors.ErrInternalServer)
}

func (h *WizardHandler) render(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apiErr)
}
