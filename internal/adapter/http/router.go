package http

import (
	"embed"
	"io"
	"io/fs"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var viewsFS embed.FS

type AppConfig struct {
	// BodyLimit caps request bodies, uploads included.
	BodyLimit int
	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
}

// defaultReadBuffer is fasthttp's request header buffer size.
const defaultReadBuffer = 4096

// readBufferSize fits the request line of a /review redirect carrying a
// record of maxPayloadBytes. Percent-encoding can triple every byte.
func readBufferSize(maxPayloadBytes int) int {
	if maxPayloadBytes <= 0 {
		return defaultReadBuffer
	}
	return 3*maxPayloadBytes + defaultReadBuffer
}

// NewApp wires the routes onto a fiber application.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(nethttp.FS(sub), ".html")

	app := fiber.New(fiber.Config{
		Views:                 engine,
		BodyLimit:             cfg.BodyLimit,
		ReadBufferSize:        readBufferSize(h.maxPayloadBytes),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: cfg.AccessLog}))
	}

	app.Get("/", h.Index)
	app.Post("/process", h.Process)
	app.Get("/review", h.Review)
	app.Post("/generate/:template", h.Generate)
	app.Get("/output/:filename", h.Output)

	return app
}
