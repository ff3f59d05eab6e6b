package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/ingest"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
)

const capitecText = `Capitec Bank Limited
21/10/2025 Prepaid Purchase Cellphone 150.00 0.00 4320.55
21/10/2025 Cash Withdrawal 500.00 7.50 3813.05 Cash Withdrawal
21/10/2025 Recurring Transfer Insufficient Funds (16916070)
`

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	reg, err := config.DefaultRegistry()
	require.NoError(t, err)
	promReg := prometheus.NewRegistry()
	rec := metrics.New(promReg)
	svc := ingest.NewService(reg, ingest.WithMetrics(rec))
	h := NewHandler(svc, WithMetrics(rec, promReg), WithVersion("test"))
	return NewApp(h, 1)
}

// uploadRequest builds a multipart convert request with the given form fields.
func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeConvert(t *testing.T, resp *http.Response) ConvertResponse {
	t.Helper()
	var out ConvertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}

	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}

	if result["profiles"] == "" {
		t.Error("expected a profiles version")
	}
}

func TestBanksEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/banks", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var banks []BankInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&banks))
	ids := make([]string, 0, len(banks))
	for _, b := range banks {
		ids = append(ids, b.ID)
		assert.NotEmpty(t, b.DateLayouts, b.ID)
	}
	assert.ElementsMatch(t, []string{"capitec", "tymebank", "other"}, ids)
}

func TestConvertEndpointRequiresFile(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest("POST", "/api/convert", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// Should fail because no file in the body
	if resp.StatusCode == fiber.StatusOK {
		t.Error("expected non-200 for missing file")
	}
}

func TestConvertEndpoint_JSON(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(uploadRequest(t, "october.txt", capitecText, map[string]string{"bank": "capitec"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeConvert(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, "capitec", out.Bank)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 3, out.Count)
	require.Len(t, out.Transactions, 3)
	assert.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "657.5", out.TotalDebit.Add(out.TotalCredit).String())
	assert.Contains(t, out.CSV, "Date,Description,Direction")
	assert.Contains(t, out.RawText, "Prepaid Purchase")
}

func TestConvertEndpoint_AutoDetect(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(uploadRequest(t, "october.txt", capitecText, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "capitec", decodeConvert(t, resp).Bank)
}

func TestConvertEndpoint_Download(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(uploadRequest(t, "october.txt", capitecText, map[string]string{
		"bank":   "capitec",
		"format": "csv",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="october.csv"`)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Prepaid Purchase")
}

func TestConvertEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		want     int
	}{
		{"unsupported extension", "statement.docx", capitecText, nil, fiber.StatusBadRequest},
		{"unknown bank", "statement.txt", capitecText, map[string]string{"bank": "mystery"}, fiber.StatusBadRequest},
		{"unknown format", "statement.txt", capitecText, map[string]string{"format": "qif"}, fiber.StatusBadRequest},
		{"undetectable bank", "statement.txt", "Mystery Bank\n01/10/2025 Something 10.00 20.00\n", nil, fiber.StatusUnprocessableEntity},
		{"unreadable document", "statement.pdf", "%PDF-1.4\nnot really a pdf", map[string]string{"bank": "capitec"}, fiber.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t)
			resp, err := app.Test(uploadRequest(t, tt.filename, tt.content, tt.fields))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			out := decodeConvert(t, resp)
			assert.False(t, out.Success)
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp(t)

	_, err := app.Test(uploadRequest(t, "october.txt", capitecText, map[string]string{"bank": "capitec"}))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `ledger_parses_total{bank="capitec",result="success"} 1`))
}
