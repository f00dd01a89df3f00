package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/infrastructure/storage"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/layout"
)

const (
	msgNoFile          = "No file uploaded"
	msgNotPDF          = "Only PDF files are supported"
	msgNoReviewData    = "No resume data available"
	msgBadReviewData   = "Invalid resume data"
	msgNoGenerateData  = "No resume data provided"
	msgBadGenerateData = "Invalid resume data format"
	msgBadTemplate     = "Invalid template selected"
	msgGenerated       = "Resume generated successfully"
	msgTooLarge        = "Extracted resume data is too large to review"
)

// Pipeline is the work behind the routes.
type Pipeline interface {
	Extract(ctx context.Context, uploadPath string) (model.Record, error)
	Generate(ctx context.Context, rec model.Record, tpl layout.Template) (string, error)
}

type Handler struct {
	pipeline        Pipeline
	uploadDir       string
	outputDir       string
	maxPayloadBytes int
	logger          *slog.Logger
}

func NewHandler(p Pipeline, uploadDir, outputDir string, maxPayloadBytes int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline:        p,
		uploadDir:       uploadDir,
		outputDir:       outputDir,
		maxPayloadBytes: maxPayloadBytes,
		logger:          logger,
	}
}

// Index renders the upload form along with any message carried over from a
// redirect.
func (h *Handler) Index(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Error":   c.Query("error"),
		"Success": c.Query("success"),
		"PDFURL":  c.Query("pdf_url"),
	})
}

// Process stores the upload, extracts its fields and hands the result to
// the review page.
func (h *Handler) Process(c *fiber.Ctx) error {
	fh, err := c.FormFile("pdf_doc")
	if err != nil || fh.Filename == "" {
		return redirectIndex(c, "error", msgNoFile)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return redirectIndex(c, "error", msgNotPDF)
	}

	path := storage.UniquePath(h.uploadDir, "upload_", ".pdf")
	if err := c.SaveFile(fh, path); err != nil {
		h.logger.Error("saving upload failed", "path", path, "error", err)
		return redirectIndex(c, "error", "Failed to save file: "+err.Error())
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("removing upload failed", "path", path, "error", err)
		}
	}()

	if mt, err := mimetype.DetectFile(path); err != nil || !mt.Is("application/pdf") {
		return redirectIndex(c, "error", msgNotPDF)
	}

	rec, err := h.pipeline.Extract(c.UserContext(), path)
	if err != nil {
		return redirectIndex(c, "error", extractMessage(err))
	}

	enc, err := model.Encode(rec)
	if err != nil {
		return redirectIndex(c, "error", msgBadReviewData)
	}
	if err := h.checkCarried(rec, enc); err != nil {
		h.logger.Warn("extracted record cannot be carried", "error", err)
		return redirectIndex(c, "error", msgTooLarge)
	}
	return c.Redirect(reviewURL(enc, ""), fiber.StatusFound)
}

// Review shows the extracted fields and one generate action per layout.
func (h *Handler) Review(c *fiber.Ctx) error {
	raw := c.Query("data")
	if raw == "" {
		return redirectIndex(c, "error", msgNoReviewData)
	}
	rec, err := model.ParsePayload(raw, h.maxPayloadBytes)
	if err != nil {
		h.logger.Debug("rejecting review payload", "error", err)
		return redirectIndex(c, "error", msgBadReviewData)
	}
	enc, err := model.Encode(rec)
	if err != nil {
		return redirectIndex(c, "error", msgBadReviewData)
	}

	return c.Render("review", fiber.Map{
		"Error":     c.Query("error"),
		"Data":      enc,
		"Preview":   layout.Build(model.Decode(rec), layout.Basic),
		"Templates": layout.Templates(),
	})
}

// Generate renders the posted record with the layout named in the path.
func (h *Handler) Generate(c *fiber.Ctx) error {
	raw := c.FormValue("data")
	if raw == "" {
		return redirectIndex(c, "error", msgNoGenerateData)
	}
	rec, err := model.ParsePayload(raw, h.maxPayloadBytes)
	if err != nil {
		h.logger.Debug("rejecting generate payload", "error", err)
		return redirectIndex(c, "error", msgBadGenerateData)
	}
	enc, err := model.Encode(rec)
	if err != nil {
		return redirectIndex(c, "error", msgBadGenerateData)
	}

	tpl, err := layout.ParseTemplate(c.Params("template"))
	if err != nil {
		return c.Redirect(reviewURL(enc, msgBadTemplate), fiber.StatusFound)
	}

	name, err := h.pipeline.Generate(c.UserContext(), rec, tpl)
	if err != nil {
		msg := "Failed to generate PDF: " + causeOf(err, usecase.ErrGeneration)
		return c.Redirect(reviewURL(enc, msg), fiber.StatusFound)
	}

	q := url.Values{}
	q.Set("success", msgGenerated)
	q.Set("pdf_url", "/output/"+name)
	return c.Redirect("/?"+q.Encode(), fiber.StatusFound)
}

// Output serves a generated document. Only the base name of the request
// path is used.
func (h *Handler) Output(c *fiber.Ctx) error {
	name := filepath.Base(c.Params("filename"))
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		return fiber.ErrNotFound
	}
	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fiber.ErrNotFound
	}
	return c.SendFile(path)
}

// checkCarried applies the limits Review and Generate will enforce, so a
// record that cannot make the round trip is rejected here.
func (h *Handler) checkCarried(rec model.Record, enc string) error {
	if h.maxPayloadBytes > 0 && len(enc) > h.maxPayloadBytes {
		return fmt.Errorf("%w: %d bytes", model.ErrPayloadTooLarge, len(enc))
	}
	return model.ValidateMap(rec)
}

func redirectIndex(c *fiber.Ctx, kind, msg string) error {
	q := url.Values{}
	q.Set(kind, msg)
	return c.Redirect("/?"+q.Encode(), fiber.StatusFound)
}

func reviewURL(data, errMsg string) string {
	q := url.Values{}
	q.Set("data", data)
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	return "/review?" + q.Encode()
}

func extractMessage(err error) string {
	var xerr *ai.ExtractionError
	switch {
	case errors.Is(err, usecase.ErrExtraction):
		return "Failed to read PDF: " + causeOf(err, usecase.ErrExtraction)
	case errors.As(err, &xerr):
		return xerr.Error()
	default:
		return err.Error()
	}
}

// causeOf strips the sentinel prefix added by fmt.Errorf("%w: %w", ...).
func causeOf(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), fmt.Sprintf("%s: ", sentinel))
}
