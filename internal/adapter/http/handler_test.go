package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/layout"
)

type stubPipeline struct {
	rec        model.Record
	extErr     error
	name       string
	genErr     error
	gotPath    string
	gotRec     model.Record
	gotTpl     layout.Template
	called     bool
	uploadSeen bool
}

func (s *stubPipeline) Extract(ctx context.Context, path string) (model.Record, error) {
	s.called = true
	s.gotPath = path
	_, err := os.Stat(path)
	s.uploadSeen = err == nil
	return s.rec, s.extErr
}

func (s *stubPipeline) Generate(ctx context.Context, rec model.Record, tpl layout.Template) (string, error) {
	s.called = true
	s.gotRec = rec
	s.gotTpl = tpl
	return s.name, s.genErr
}

type fixture struct {
	app       *fiber.App
	pipeline  *stubPipeline
	uploadDir string
	outputDir string
}

func newFixture(t *testing.T, p *stubPipeline) fixture {
	t.Helper()
	up, out := t.TempDir(), t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(p, up, out, 64<<10, logger)
	return fixture{
		app:       NewApp(h, AppConfig{BodyLimit: 4 << 20}),
		pipeline:  p,
		uploadDir: up,
		outputDir: out,
	}
}

func (f fixture) do(t *testing.T, req *nethttp.Request) *nethttp.Response {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func uploadRequest(t *testing.T, filename string, content []byte) *nethttp.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("pdf_doc", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	} else if err := w.WriteField("other", "x"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(nethttp.MethodPost, "/process", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func generateRequest(template, data string) *nethttp.Request {
	form := url.Values{}
	if data != "" {
		form.Set("data", data)
	}
	req := httptest.NewRequest(nethttp.MethodPost, "/generate/"+template, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// location returns the redirect target split into path and query.
func location(t *testing.T, resp *nethttp.Response) (string, url.Values) {
	t.Helper()
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	u, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("bad Location %q: %v", resp.Header.Get("Location"), err)
	}
	return u.Path, u.Query()
}

func body(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

func TestIndexShowsMessages(t *testing.T) {
	f := newFixture(t, &stubPipeline{})
	q := url.Values{"success": {"Resume generated successfully"}, "pdf_url": {"/output/a.pdf"}}
	resp := f.do(t, httptest.NewRequest(nethttp.MethodGet, "/?"+q.Encode(), nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	b := body(t, resp)
	for _, want := range []string{"Resume generated successfully", `href="/output/a.pdf"`, `name="pdf_doc"`} {
		if !strings.Contains(b, want) {
			t.Fatalf("index page missing %q", want)
		}
	}
}

func TestProcessRejections(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		content  []byte
		want     string
	}{
		{name: "no file", want: "No file uploaded"},
		{name: "wrong extension", filename: "resume.docx", content: samplePDF, want: "Only PDF files are supported"},
		{name: "not pdf content", filename: "resume.pdf", content: []byte("plain text pretending"), want: "Only PDF files are supported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, &stubPipeline{})
			path, q := location(t, f.do(t, uploadRequest(t, tc.filename, tc.content)))
			if path != "/" || q.Get("error") != tc.want {
				t.Fatalf("redirect = %s error=%q, want / %q", path, q.Get("error"), tc.want)
			}
			if f.pipeline.called {
				t.Fatalf("pipeline should not run")
			}
			if entries, _ := os.ReadDir(f.uploadDir); len(entries) != 0 {
				t.Fatalf("upload left behind")
			}
		})
	}
}

func TestProcessRedirectsToReview(t *testing.T) {
	rec := model.Record{"Full Name": "Jane Doe", "Email": "jane@x.com", "Technical Skills": []interface{}{"Go", "SQL"}}
	f := newFixture(t, &stubPipeline{rec: rec})

	path, q := location(t, f.do(t, uploadRequest(t, "resume.pdf", samplePDF)))
	if path != "/review" {
		t.Fatalf("redirect path = %s", path)
	}
	got, err := model.ParsePayload(q.Get("data"), 0)
	if err != nil {
		t.Fatalf("review data: %v", err)
	}
	if got["Full Name"] != "Jane Doe" || got["Email"] != "jane@x.com" {
		t.Fatalf("review data = %v", got)
	}
	if !f.pipeline.uploadSeen || filepath.Dir(f.pipeline.gotPath) != f.uploadDir {
		t.Fatalf("pipeline got path %q", f.pipeline.gotPath)
	}
	if _, err := os.Stat(f.pipeline.gotPath); !os.IsNotExist(err) {
		t.Fatalf("upload should be removed after processing")
	}
}

func TestProcessPipelineFailures(t *testing.T) {
	cases := []struct {
		name string
		rec  model.Record
		err  error
		want string
	}{
		{
			name: "completion refused",
			err:  &ai.ExtractionError{Reason: "Invalid JSON format", Raw: "Sorry, I cannot process this"},
			want: "Invalid JSON format",
		},
		{
			name: "record too large to carry",
			rec:  model.Record{"Full Name": strings.Repeat("a", 70<<10)},
			want: "Extracted resume data is too large to review",
		},
		{
			name: "unreadable pdf",
			err:  fmt.Errorf("%w: %w", usecase.ErrExtraction, errors.New("malformed xref table")),
			want: "Failed to read PDF: malformed xref table",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, &stubPipeline{rec: tc.rec, extErr: tc.err})
			path, q := location(t, f.do(t, uploadRequest(t, "resume.pdf", samplePDF)))
			if path != "/" || q.Get("error") != tc.want {
				t.Fatalf("redirect = %s error=%q, want / %q", path, q.Get("error"), tc.want)
			}
		})
	}
}

func TestReview(t *testing.T) {
	f := newFixture(t, &stubPipeline{})

	t.Run("missing data", func(t *testing.T) {
		path, q := location(t, f.do(t, httptest.NewRequest(nethttp.MethodGet, "/review", nil)))
		if path != "/" || q.Get("error") != "No resume data available" {
			t.Fatalf("redirect = %s %v", path, q)
		}
	})

	t.Run("invalid data", func(t *testing.T) {
		req := httptest.NewRequest(nethttp.MethodGet, "/review?data="+url.QueryEscape("{not json"), nil)
		path, q := location(t, f.do(t, req))
		if path != "/" || q.Get("error") != "Invalid resume data" {
			t.Fatalf("redirect = %s %v", path, q)
		}
	})

	t.Run("renders fields and layouts", func(t *testing.T) {
		data := `{"Full Name":"Jane <Doe>","Employment History":[{"Job Title":"Engineer","Company":"Acme","Dates":"2020-2023"}]}`
		req := httptest.NewRequest(nethttp.MethodGet, "/review?data="+url.QueryEscape(data), nil)
		resp := f.do(t, req)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		b := body(t, resp)
		for _, want := range []string{
			"Jane &lt;Doe&gt;",
			"Engineer at Acme - 2020-2023",
			`formaction="/generate/template_basic"`,
			`formaction="/generate/template_modern"`,
		} {
			if !strings.Contains(b, want) {
				t.Fatalf("review page missing %q", want)
			}
		}
	})
}

func TestGenerate(t *testing.T) {
	data := `{"Full Name":"Jane Doe"}`

	t.Run("missing data", func(t *testing.T) {
		f := newFixture(t, &stubPipeline{})
		path, q := location(t, f.do(t, generateRequest("template_basic", "")))
		if path != "/" || q.Get("error") != "No resume data provided" {
			t.Fatalf("redirect = %s %v", path, q)
		}
	})

	t.Run("invalid data", func(t *testing.T) {
		f := newFixture(t, &stubPipeline{})
		path, q := location(t, f.do(t, generateRequest("template_basic", "[1,2")))
		if path != "/" || q.Get("error") != "Invalid resume data format" {
			t.Fatalf("redirect = %s %v", path, q)
		}
	})

	t.Run("unknown template keeps data", func(t *testing.T) {
		f := newFixture(t, &stubPipeline{})
		path, q := location(t, f.do(t, generateRequest("unknown_template", data)))
		if path != "/review" || q.Get("error") != "Invalid template selected" {
			t.Fatalf("redirect = %s %v", path, q)
		}
		got, err := model.ParsePayload(q.Get("data"), 0)
		if err != nil || got["Full Name"] != "Jane Doe" {
			t.Fatalf("data not preserved: %v %v", got, err)
		}
		if f.pipeline.called {
			t.Fatalf("pipeline should not run")
		}
	})

	t.Run("generation failure returns to review", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", usecase.ErrGeneration, errors.New("chrome not found"))
		f := newFixture(t, &stubPipeline{genErr: err})
		path, q := location(t, f.do(t, generateRequest("template_modern", data)))
		if path != "/review" || q.Get("error") != "Failed to generate PDF: chrome not found" {
			t.Fatalf("redirect = %s %v", path, q)
		}
		if q.Get("data") == "" {
			t.Fatalf("data not preserved")
		}
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t, &stubPipeline{name: "ats_resume_modern_1.pdf"})
		path, q := location(t, f.do(t, generateRequest("template_modern", data)))
		if path != "/" || q.Get("success") != "Resume generated successfully" {
			t.Fatalf("redirect = %s %v", path, q)
		}
		if q.Get("pdf_url") != "/output/ats_resume_modern_1.pdf" {
			t.Fatalf("pdf_url = %q", q.Get("pdf_url"))
		}
		if f.pipeline.gotTpl != layout.Modern || f.pipeline.gotRec["Full Name"] != "Jane Doe" {
			t.Fatalf("pipeline got %v %v", f.pipeline.gotTpl, f.pipeline.gotRec)
		}
	})
}

func TestOutput(t *testing.T) {
	f := newFixture(t, &stubPipeline{})
	if err := os.WriteFile(filepath.Join(f.outputDir, "ats_resume_basic_1.pdf"), samplePDF, 0o644); err != nil {
		t.Fatal(err)
	}

	resp := f.do(t, httptest.NewRequest(nethttp.MethodGet, "/output/ats_resume_basic_1.pdf", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if b := body(t, resp); b != string(samplePDF) {
		t.Fatalf("served %q", b)
	}

	for _, p := range []string{"/output/missing.pdf", "/output/..%2F..%2Fetc%2Fpasswd"} {
		resp := f.do(t, httptest.NewRequest(nethttp.MethodGet, p, nil))
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", p, resp.StatusCode)
		}
	}
}

func TestProcessToReviewRoundTripsLargeRecord(t *testing.T) {
	jobs := make([]interface{}, 0, 20)
	for i := 0; i < 20; i++ {
		jobs = append(jobs, map[string]interface{}{
			"Job Title":   fmt.Sprintf("Senior Engineer %d", i),
			"Company":     "Acme & Sons",
			"Dates":       "2015 - 2024",
			"Description": strings.Repeat("Built and ran services/pipelines; ", 12),
		})
	}
	rec := model.Record{"Full Name": "Jane Doe", "Employment History": jobs}
	enc, err := model.Encode(rec)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) < 10<<10 {
		t.Fatalf("record is only %d bytes", len(enc))
	}

	f := newFixture(t, &stubPipeline{rec: rec})
	resp := f.do(t, uploadRequest(t, "resume.pdf", samplePDF))
	if path, _ := location(t, resp); path != "/review" {
		t.Fatalf("redirect path = %s", path)
	}

	next := f.do(t, httptest.NewRequest(nethttp.MethodGet, resp.Header.Get("Location"), nil))
	if next.StatusCode != fiber.StatusOK {
		t.Fatalf("review status = %d", next.StatusCode)
	}
	b := body(t, next)
	for _, want := range []string{"Senior Engineer 0 at Acme &amp; Sons", "Senior Engineer 19 at Acme &amp; Sons"} {
		if !strings.Contains(b, want) {
			t.Fatalf("review page missing %q", want)
		}
	}
}

func TestReadBufferSizeFitsEncodedPayload(t *testing.T) {
	if got := readBufferSize(0); got != defaultReadBuffer {
		t.Fatalf("readBufferSize(0) = %d", got)
	}
	if got := readBufferSize(64 << 10); got < 3*(64<<10) {
		t.Fatalf("readBufferSize(64KiB) = %d, too small for percent-encoding", got)
	}
}
