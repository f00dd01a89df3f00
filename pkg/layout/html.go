package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var resumeTpl = template.Must(template.New("resume.html.tmpl").Funcs(template.FuncMap{
	"pt":   func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "pt" },
	"kind": func(b Block) string { return string(b.Kind) },
}).ParseFS(templateFS, "templates/resume.html.tmpl"))

// RenderHTML renders the document as a standalone HTML page sized for US
// letter paper.
func RenderHTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := resumeTpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render resume html: %w", err)
	}
	return buf.String(), nil
}
