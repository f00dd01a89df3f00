package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/pkg/layout"
)

var (
	ErrExtraction = errors.New("failed to read PDF")
	ErrGeneration = errors.New("failed to generate PDF")
)

type TextExtractor interface {
	ExtractText(path string) (string, error)
}

type FieldExtractor interface {
	ExtractFields(ctx context.Context, resumeText string) (model.Record, error)
}

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// Processor runs the résumé pipeline: text extraction, field extraction and
// document generation.
type Processor struct {
	text      TextExtractor
	fields    FieldExtractor
	renderer  Renderer
	outputDir string
	logger    *slog.Logger
}

func NewProcessor(t TextExtractor, f FieldExtractor, r Renderer, outputDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{text: t, fields: f, renderer: r, outputDir: outputDir, logger: logger}
}

// Extract reads the uploaded PDF at path and asks the completion service
// to structure it. Completion failures are returned as *ai.ExtractionError.
func (p *Processor) Extract(ctx context.Context, path string) (model.Record, error) {
	job := domain.NewResumeJob(domain.JobExtract)
	log := p.logger.With("job", job.ID.String(), "kind", job.Kind)

	text, err := p.text.ExtractText(path)
	if err != nil {
		job.Fail(err)
		log.Error("text extraction failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	log.Debug("extracted pdf text", "chars", len(text))

	rec, err := p.fields.ExtractFields(ctx, text)
	if err != nil {
		job.Fail(err)
		log.Warn("field extraction failed", "error", err)
		return nil, err
	}

	job.Complete(path)
	log.Info("resume fields extracted", "fields", len(rec), "elapsed", job.Elapsed())
	return rec, nil
}

// Generate lays out rec with tpl, prints it to PDF and writes the file into
// the output directory. It returns the file name relative to that
// directory.
func (p *Processor) Generate(ctx context.Context, rec model.Record, tpl layout.Template) (string, error) {
	job := domain.NewResumeJob(domain.JobGenerate)
	job.Template = tpl.Slug()
	log := p.logger.With("job", job.ID.String(), "kind", job.Kind, "template", job.Template)

	fail := func(err error) (string, error) {
		job.Fail(err)
		log.Error("resume generation failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	doc := layout.Build(model.Decode(rec), tpl)
	html, err := layout.RenderHTML(doc)
	if err != nil {
		return fail(err)
	}

	pdfBytes, err := p.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return fail(err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		return fail(fmt.Errorf("invalid PDF output (len=%d)", len(pdfBytes)))
	}

	name := OutputName(tpl, job)
	if err := os.WriteFile(filepath.Join(p.outputDir, name), pdfBytes, 0o644); err != nil {
		return fail(err)
	}

	job.Complete(name)
	log.Info("resume generated", "file", name, "sections", len(doc.Sections), "elapsed", job.Elapsed())
	return name, nil
}

// OutputName is the file name of the document generated by job.
func OutputName(tpl layout.Template, job *domain.ResumeJob) string {
	return fmt.Sprintf("ats_resume_%s_%s.pdf", tpl.Slug(), job.ID.String())
}
