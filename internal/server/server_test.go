package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/fold"
	"github.com/itsmostafa/bomfold/internal/materialize"
	"github.com/itsmostafa/bomfold/internal/metrics"
	"github.com/itsmostafa/bomfold/internal/rules"
)

const bikeCSV = `level,Part Number,Part Name,Quantity
1,TOP,Bike,
2,SUB-1,Wheel set,2
3,P-1,Spoke,32
2,P-2,Frame,1
`

type document struct {
	BOMs []struct {
		ID   any `json:"id"`
		Name any `json:"name"`
	} `json:"boms"`
	BOMEntries []struct {
		BOMID     any     `json:"bom_id"`
		EntryType string  `json:"entry_type"`
		EntryID   any     `json:"entry_id"`
		Quantity  float64 `json:"quantity"`
	} `json:"bom_entries"`
}

func do(t *testing.T, config Config, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	e := New(config)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, Config{}, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestFoldCSV(t *testing.T) {
	rec := do(t, Config{}, http.MethodPost, "/v1/fold", "text/csv", []byte(bikeCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Run-Id"))

	var doc document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.BOMs, 2)
	require.Len(t, doc.BOMEntries, 3)
	assert.Equal(t, "SUB-1", doc.BOMs[0].ID)
	assert.Equal(t, "sub-bom", doc.BOMEntries[0].EntryType)
	assert.Equal(t, 32.0, doc.BOMEntries[1].Quantity)
}

func TestFoldOverrides(t *testing.T) {
	body := "depth,sku\n1,A\n2,B\n"
	rec := do(t, Config{}, http.MethodPost, "/v1/fold?format=csv&level_key=depth&id_key=sku&quantity_key=qty", "", []byte(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.BOMEntries, 1)
	assert.Equal(t, "A", doc.BOMEntries[0].BOMID)
	assert.Equal(t, "part", doc.BOMEntries[0].EntryType)
	assert.Equal(t, 1.0, doc.BOMEntries[0].Quantity)
}

func TestFoldXLSX(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	for i, row := range [][]any{{"level", "Part Number"}, {"1", "TOP"}, {"2", "P-1"}} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	rec := do(t, Config{}, http.MethodPost, "/v1/fold", mimeXLSX, buf.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.BOMEntries, 1)
	assert.Equal(t, "P-1", doc.BOMEntries[0].EntryID)
}

// An empty upload folds to an empty forest with no keys, so the id key
// cannot resolve.
func TestFoldEmptyBody(t *testing.T) {
	rec := do(t, Config{}, http.MethodPost, "/v1/fold", "text/csv", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFoldErrors(t *testing.T) {
	absolute := &rules.Rules{
		Policy: fold.Absolute{ParentKey: "parent", ReferenceKey: "Part Number"},
		Output: materialize.Rules{IDKey: "Part Number"},
	}

	tests := []struct {
		name   string
		config Config
		target string
		body   string
		status int
		code   string
	}{
		{"unknown format", Config{}, "/v1/fold?format=ods", bikeCSV, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"missing level key", Config{}, "/v1/fold?level_key=depth", bikeCSV, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad number", Config{}, "/v1/fold", "level,Part Number,Quantity\n1,A,many\n", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"absolute policy", Config{Rules: absolute}, "/v1/fold", bikeCSV, http.StatusNotImplemented, "UNIMPLEMENTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.config, http.MethodPost, tt.target, "text/csv", []byte(tt.body))
			assert.Equal(t, tt.status, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestFoldBodyTooLarge(t *testing.T) {
	e := New(Config{BodyLimit: "1K"})

	body := "level,Part Number\n" + strings.Repeat("1,A\n", 1024)
	// no Content-Length, so the limit trips while the body is being parsed
	req := httptest.NewRequest(http.MethodPost, "/v1/fold", io.MultiReader(strings.NewReader(body)))
	require.EqualValues(t, -1, req.ContentLength)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestServerErrorsReported(t *testing.T) {
	var reported []string
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.invalid/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			for _, ex := range event.Exception {
				reported = append(reported, ex.Value)
			}
			return nil
		},
	})
	require.NoError(t, err)

	e := New(Config{Hub: sentry.NewHub(client, sentry.NewScope())})
	e.GET("/boom", func(echo.Context) error { return errors.New("disk full") })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/fold?format=ods", strings.NewReader(bikeCSV)))

	require.Len(t, reported, 1)
	assert.Equal(t, "disk full", reported[0])
}

func TestNotFound(t *testing.T) {
	rec := do(t, Config{}, http.MethodGet, "/v2/fold", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	e := New(Config{Metrics: m})

	req := httptest.NewRequest(http.MethodPost, "/v1/fold", strings.NewReader(bikeCSV))
	e.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bomfold_rows_total 4")
	assert.Contains(t, rec.Body.String(), `bomfold_runs_total{status="ok"} 1`)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(bomerr.InvalidArgument("x")))
	assert.Equal(t, http.StatusNotImplemented, StatusOf(bomerr.Unimplemented("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
}

func TestServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := New(Config{})

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, e, "127.0.0.1:0", nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
