package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"

	"github.com/bayneri/bunk/internal/config"
	"github.com/bayneri/bunk/internal/report"
)

//go:embed views/*.html
var viewsFS embed.FS

type Options struct {
	Defaults  config.Defaults
	Now       func() time.Time
	LogOutput io.Writer
}

type server struct {
	defaults config.Defaults
	location *time.Location
	now      func() time.Time
}

// New builds the web form and the JSON projection API.
func New(opts Options) (*fiber.App, error) {
	loc, err := time.LoadLocation(opts.Defaults.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", opts.Defaults.Timezone, err)
	}
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}

	s := &server{defaults: opts.Defaults, location: loc, now: opts.Now}

	app := fiber.New(fiber.Config{
		Views:                 engine,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		Output: opts.LogOutput,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", s.form)
	app.Post("/", s.submit)

	api := app.Group("/api/v1", cors.New())
	api.Post("/projections", s.createProjection)
	api.Get("/projections", s.getProjection)

	return app, nil
}

// Run serves app on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newEngine() (*html.Engine, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("pct", func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	})
	engine.AddFunc("width", func(value, max float64) int {
		return report.BarFill(value, max, 100)
	})
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	return engine, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(err.Error())
}
