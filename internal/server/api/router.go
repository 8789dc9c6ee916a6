package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/perhapsishould/contract-processor/internal/core/pipeline"
	"github.com/perhapsishould/contract-processor/internal/server/api/handlers"
)

type RouterConfig struct {
	Pipeline      *pipeline.Pipeline
	MaxUploadSize int64
	BaseURL       string
}

func SetupRouter(e *echo.Echo, cfg RouterConfig) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	config := huma.DefaultConfig("Contract Processor API", "1.0.0")
	config.Info.Description = "Asynchronous contract document processing: upload, extract, publish, poll."

	api := humaecho.New(e, config)

	jobsHandler := handlers.NewJobsHandler(cfg.Pipeline, cfg.MaxUploadSize, cfg.BaseURL)

	huma.Register(api, huma.Operation{
		OperationID:   "submit-job",
		Method:        http.MethodPost,
		Path:          "/jobs",
		Summary:       "Submit a contract document for processing",
		Tags:          []string{"Jobs"},
		DefaultStatus: http.StatusAccepted,
	}, jobsHandler.Submit)

	huma.Register(api, huma.Operation{
		OperationID: "get-job-status",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}/status",
		Summary:     "Get the status of a processing job",
		Tags:        []string{"Jobs"},
	}, jobsHandler.Status)

	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/jobs",
		Summary:     "List all jobs in submission order",
		Tags:        []string{"Jobs"},
	}, jobsHandler.List)
}
