package server

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/itsmostafa/bomfold/internal/parse"
	"github.com/itsmostafa/bomfold/internal/pipeline"
	"github.com/itsmostafa/bomfold/internal/rules"
	"github.com/itsmostafa/bomfold/internal/sink"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	runner *pipeline.Runner
	rules  *rules.Rules
}

func NewHandler(runner *pipeline.Runner, r *rules.Rules) *Handler {
	if r == nil {
		r = rules.Default()
	}
	return &Handler{runner: runner, rules: r}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/v1")
	api.POST("/fold", h.Fold)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Fold converts the request body and returns the item sync document.
func (h *Handler) Fold(c echo.Context) error {
	format, err := requestFormat(c)
	if err != nil {
		return err
	}

	r := h.rules.Apply(rules.Overrides{
		LevelKey:    c.QueryParam("level_key"),
		IDKey:       c.QueryParam("id_key"),
		NameKey:     c.QueryParam("name_key"),
		QuantityKey: c.QueryParam("quantity_key"),
	})

	result, err := h.runner.Run(c.Request().Context(), pipeline.Request{
		Reader: c.Request().Body,
		Format: format,
		Sheet:  c.QueryParam("sheet"),
		Rules:  r,
	})
	if err != nil {
		return err
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	resp.Header().Set("X-Run-Id", result.RunID)
	resp.WriteHeader(http.StatusOK)
	return (&sink.JSON{W: resp}).Write(c.Request().Context(), result.Output)
}

// requestFormat prefers ?format=, then the content type, then csv.
func requestFormat(c echo.Context) (parse.Format, error) {
	if f := c.QueryParam("format"); f != "" {
		return parse.ValidateFormat(f)
	}

	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	switch mediaType {
	case mimeXLSX:
		return parse.FormatXLSX, nil
	default:
		return parse.FormatCSV, nil
	}
}
