package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"resume-builder/internal/infrastructure/storage"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/infrastructure"
	"resume-builder/pkg/layout"
	"resume-builder/pkg/pdftext"
)

// cannedBackend stands in for the completion service and always answers
// with the same fenced record.
type cannedBackend struct{}

func (cannedBackend) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	return []ai.ModelInfo{{Name: "models/canned", Actions: []string{ai.ActionGenerateContent}}}, nil
}

func (cannedBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	rec := map[string]interface{}{
		"Full Name":        "Test User",
		"Email":            "t@example.com",
		"Phone":            "555-0100",
		"GitHub Profile":   "github.com/testuser",
		"LinkedIn Profile": "linkedin.com/in/testuser",
		"Employment History": []map[string]interface{}{
			{"Job Title": "Engineer", "Company": "Acme", "Dates": "2020-2024", "Description": "Built the data pipeline."},
		},
		"Technical Skills": []string{"Go", "PostgreSQL"},
		"Soft Skills":      []string{"Mentoring"},
		"Education": []map[string]interface{}{
			{"Degree": "BSc Computer Science", "Institution": "State University", "Location": "Springfield", "Dates": "2016-2020", "Achievements": "Dean's list"},
		},
		"Certifications": []string{"Certified Kubernetes Administrator"},
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(b) + "\n```", nil
}

func main() {
	in := flag.String("pdf", "", "résumé PDF to process")
	outDir := flag.String("out", "__OUTPUT__", "output directory")
	tplName := flag.String("template", "modern", "layout: basic or modern")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if *in == "" {
		logger.Error("missing -pdf")
		os.Exit(2)
	}
	tpl, err := layout.ParseTemplate(*tplName)
	if err != nil {
		logger.Error("bad template", "error", err)
		os.Exit(2)
	}
	if err := storage.Prepare(logger, *outDir); err != nil {
		os.Exit(1)
	}

	client := ai.NewClient(cannedBackend{}, nil, logger)
	r := infrastructure.NewChromedpRenderer(os.Getenv("CHROME_PATH"), 60*time.Second)
	processor := usecase.NewProcessor(pdftext.NewExtractor(), client, r, *outDir, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	rec, err := processor.Extract(ctx, *in)
	if err != nil {
		fmt.Printf("Extract failed: %v\n", err)
		os.Exit(1)
	}
	name, err := processor.Generate(ctx, rec, tpl)
	if err != nil {
		fmt.Printf("Generate failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Process completed. Generated PDF: %s\n", filepath.Join(*outDir, name))
}
