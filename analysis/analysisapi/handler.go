package analysisapi

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/analysis/analysissrv"
	"github.com/careerlens/careerlens/internal/extract"
	"github.com/careerlens/careerlens/pkg/fsx"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
)

const maxUploadSize = int64(10 * 1024 * 1024) // 10MB

type AnalysisHandlers struct {
	service    *analysissrv.Service
	engine     *extract.Engine
	fileSystem fsx.FileSystem
}

func NewAnalysisHandlers(service *analysissrv.Service, engine *extract.Engine, fileSystem fsx.FileSystem) *AnalysisHandlers {
	return &AnalysisHandlers{
		service:    service,
		engine:     engine,
		fileSystem: fileSystem,
	}
}

func (h *AnalysisHandlers) RegisterRoutes(app *fiber.App) {
	documents := app.Group("/api/v1/documents")
	documents.Post("/extract", h.ExtractDocument) // Upload + text extraction

	analyses := app.Group("/api/v1/analyses")
	analyses.Post("/", h.Analyze)                  // Synchronous analysis
	analyses.Post("/async", h.AnalyzeAsync)        // Queue for background processing
	analyses.Get("/jobs/:job_id", h.GetJobStatus)  // Job status
	analyses.Post("/jobs/:job_id/retry", h.RetryJob)
	analyses.Get("/:id", h.GetAnalysis) // Get stored report
	analyses.Get("/", h.ListAnalyses)   // List stored reports
}

// ============================================================================
// Document Extraction
// ============================================================================

// ExtractDocument extracts text from an uploaded resume or cover letter
// POST /api/v1/documents/extract
func (h *AnalysisHandlers) ExtractDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error":    "file too large",
			"max_size": "10MB",
			"size":     file.Size,
		})
	}

	uploadedFile, err := file.Open()
	if err != nil {
		return analysis.ErrFileReadFailed(err).WithDetail("filename", file.Filename)
	}
	defer uploadedFile.Close()

	data, err := io.ReadAll(uploadedFile)
	if err != nil {
		return analysis.ErrFileReadFailed(err).WithDetail("filename", file.Filename)
	}

	result := h.engine.ExtractText(extract.Document{
		Data:      data,
		MediaType: file.Header.Get("Content-Type"),
		Filename:  file.Filename,
	})
	if !result.OK() {
		return extractionError(c, result.Failure)
	}

	// Keep the original upload around for troubleshooting. Extraction already
	// succeeded, so a storage failure only costs us the archive copy.
	storedPath := h.storeUpload(c, file.Filename, data)

	return c.JSON(analysis.ExtractDocumentResponse{
		Filename:   file.Filename,
		Text:       result.Text,
		CharCount:  len(result.Text),
		StoredPath: storedPath,
	})
}

func (h *AnalysisHandlers) storeUpload(c *fiber.Ctx, filename string, data []byte) string {
	if h.fileSystem == nil {
		return ""
	}

	now := time.Now()
	extension := filepath.Ext(filename)
	path := h.fileSystem.Join(
		"uploads",
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.NewString()+extension,
	)

	if err := h.fileSystem.WriteFile(c.Context(), path, data); err != nil {
		logx.Warnf("Failed to archive upload %s: %v", filename, err)
		return ""
	}
	return path
}

// extractionError maps an extraction failure to an HTTP response. The detail
// text is what the UI shows, so it carries the user-facing message.
func extractionError(c *fiber.Ctx, failure *extract.Failure) error {
	status := fiber.StatusUnprocessableEntity
	if failure.Reason == extract.ReasonUnsupportedType {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{
		"error":  failure.Detail,
		"reason": failure.Reason,
	})
}

// ============================================================================
// Analysis
// ============================================================================

// Analyze runs a synchronous analysis
// POST /api/v1/analyses
func (h *AnalysisHandlers) Analyze(c *fiber.Ctx) error {
	var req analysis.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	response, err := h.service.Analyze(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// AnalyzeAsync queues an analysis for background processing
// POST /api/v1/analyses/async
func (h *AnalysisHandlers) AnalyzeAsync(c *fiber.Ctx) error {
	var req analysis.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	response, err := h.service.EnqueueAnalysis(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":    "Analysis queued for processing",
		"job":        response,
		"status_url": fmt.Sprintf("/api/v1/analyses/jobs/%s", response.JobID),
	})
}

// GetAnalysis retrieves a stored analysis by ID
// GET /api/v1/analyses/:id
func (h *AnalysisHandlers) GetAnalysis(c *fiber.Ctx) error {
	id := kernel.AnalysisID(c.Params("id"))
	if id.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid analysis ID",
		})
	}

	response, err := h.service.GetAnalysis(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// ListAnalyses lists stored analyses with pagination
// GET /api/v1/analyses?page=1&page_size=20
func (h *AnalysisHandlers) ListAnalyses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.service.ListAnalyses(c.Context(), kernel.PaginationOptions{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ============================================================================
// Job Management
// ============================================================================

// GetJobStatus retrieves the status of an async analysis job
// GET /api/v1/analyses/jobs/:job_id
func (h *AnalysisHandlers) GetJobStatus(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	response, err := h.service.GetJobStatus(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// RetryJob requeues a failed analysis job
// POST /api/v1/analyses/jobs/:job_id/retry
func (h *AnalysisHandlers) RetryJob(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("job_id"))
	if jobID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job ID",
		})
	}

	response, err := h.service.RetryFailedJob(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(response)
}
