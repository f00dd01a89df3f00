package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"resume-builder/internal/model"
	infra "resume-builder/pkg/infrastructure"
	"resume-builder/pkg/layout"
)

func main() {
	in := flag.String("in", "resume.json", "record JSON file")
	out := flag.String("out", "resume.html", "output file")
	tplName := flag.String("template", "basic", "layout: basic or modern")
	asPDF := flag.Bool("pdf", false, "print to PDF with headless Chrome instead of writing HTML")
	chrome := flag.String("chrome", os.Getenv("CHROME_PATH"), "Chrome executable")
	flag.Parse()

	b, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read record: %v\n", err)
		os.Exit(2)
	}
	rec, err := model.ParsePayload(string(b), 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse record: %v\n", err)
		os.Exit(2)
	}
	tpl, err := layout.ParseTemplate(*tplName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	html, err := layout.RenderHTML(layout.Build(model.Decode(rec), tpl))
	if err != nil {
		fmt.Fprintf(os.Stderr, "render html: %v\n", err)
		os.Exit(1)
	}

	data := []byte(html)
	if *asPDF {
		r := infra.NewChromedpRenderer(*chrome, 60*time.Second)
		data, err = r.RenderHTMLToPDF(context.Background(), html)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render pdf: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s\n", *out)
}
