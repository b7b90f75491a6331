package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/WalissonCM/Validacao-de-Dados/internal/config"
	"github.com/WalissonCM/Validacao-de-Dados/internal/core"
)

// fakeStore implements core.Store in memory for handler tests.
type fakeStore struct {
	runs      map[uuid.UUID]core.Run
	customers map[uuid.UUID][]core.ValidRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:      make(map[uuid.UUID]core.Run),
		customers: make(map[uuid.UUID][]core.ValidRecord),
	}
}

func (f *fakeStore) InsertRun(_ context.Context, run core.Run, valid []core.ValidRecord) error {
	f.runs[run.ID] = run
	f.customers[run.ID] = valid
	return nil
}

func (f *fakeStore) GetRun(_ context.Context, id uuid.UUID) (core.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return core.Run{}, errors.New("run " + id.String() + " not found")
	}
	return run, nil
}

func (f *fakeStore) ListRuns(_ context.Context, limit int) ([]core.Run, error) {
	var runs []core.Run
	for _, r := range f.runs {
		runs = append(runs, r)
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (f *fakeStore) CustomersByRun(_ context.Context, id uuid.UUID) ([]core.Customer, error) {
	recs, ok := f.customers[id]
	if !ok {
		return nil, errors.New("run " + id.String() + " not found")
	}
	customers := make([]core.Customer, len(recs))
	for i, r := range recs {
		customers[i] = r.Customer
	}
	return customers, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 60 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:  1 << 20,
			HistoryLimit: 50,
		},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(store core.Store) *Server {
	var svc *core.Service
	if store != nil {
		svc = core.NewService(store)
	} else {
		svc = core.NewService(nil)
	}
	return NewServer(svc, testConfig(), nil)
}

// multipartCSV builds a multipart form body with one CSV file field.
func multipartCSV(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

const handlerCSV = "nome,cpf,email,valor_contrato,idade\n" +
	"Maria Silva,123.456.789-09,maria@example.com,1500.50,34\n" +
	"Broken,111.111.111-11,user@@nodomain,10,30\n" +
	"Ana Costa,529.982.247-25,ana@example.com,0,50\n"

func TestHandleValidate(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	body, contentType := multipartCSV(t, "clientes.csv", handlerCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID   uuid.UUID `json:"run_id"`
		Total   int       `json:"total_records"`
		Valid   int       `json:"valid_records"`
		Invalid int       `json:"invalid_rows"`
		Errors  []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
			Code  string `json:"code"`
		} `json:"errors"`
		Report string `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Total != 3 || resp.Valid != 2 || resp.Invalid != 1 {
		t.Errorf("summary = %d/%d/%d, want 3/2/1", resp.Total, resp.Valid, resp.Invalid)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("got %d errors, want 2", len(resp.Errors))
	}
	if !strings.Contains(resp.Report, "ROW 2") {
		t.Error("report missing failing row")
	}
	if _, ok := store.runs[resp.RunID]; !ok {
		t.Error("run was not persisted")
	}
}

func TestHandleValidate_FatalCSVErrors(t *testing.T) {
	srv := newTestServer(newFakeStore())

	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{name: "empty file", payload: "", wantCode: "FILE001"},
		{
			name:     "missing column",
			payload:  "nome,email,valor_contrato,idade\nMaria,m@example.com,1,30\n",
			wantCode: "CFG001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartCSV(t, "x.csv", tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Action == "" {
				t.Error("error response is missing an action suggestion")
			}
		})
	}
}

func TestHandleValidate_NoFile(t *testing.T) {
	srv := newTestServer(newFakeStore())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/validate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetRun(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	run := core.Run{
		ID:        uuid.New(),
		FileName:  "clientes.csv",
		TotalRows: 3,
		ValidRows: 2,
		ErrorRows: 1,
		Report:    "CUSTOMER DATA VALIDATION REPORT",
		CreatedAt: time.Now().UTC(),
	}
	store.runs[run.ID] = run

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String(), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got core.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != run.ID || got.TotalRows != 3 {
		t.Errorf("got run %+v", got)
	}
}

func TestHandleGetRun_Errors(t *testing.T) {
	srv := newTestServer(newFakeStore())

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "malformed id", path: "/api/runs/not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "unknown id", path: "/api/runs/" + uuid.NewString(), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleRunReport(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	run := core.Run{
		ID:        uuid.New(),
		FileName:  "clientes.csv",
		Report:    "CUSTOMER DATA VALIDATION REPORT\nTotal records processed: 3\n",
		CreatedAt: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
	}
	store.runs[run.ID] = run

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String()+"/report", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "error_report_20250314_150926.txt") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Total records processed: 3") {
		t.Error("report body missing stats")
	}
}

func TestHandleRunValidCSV(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	id := uuid.New()
	store.runs[id] = core.Run{ID: id}
	store.customers[id] = []core.ValidRecord{
		{Row: 1, Customer: core.Customer{
			Name: "Maria Silva", NationalID: "12345678909",
			Email: "maria@example.com", ContractValue: 1500.50, Age: 34,
		}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+id.String()+"/valid", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "name,national_id,email,contract_value,age") {
		t.Errorf("missing CSV header: %q", body)
	}
	if !strings.Contains(body, "Maria Silva,12345678909,maria@example.com,1500.5,34") {
		t.Errorf("missing customer row: %q", body)
	}
}

func TestHandleListRuns(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	id := uuid.New()
	store.runs[id] = core.Run{ID: id, FileName: "a.csv"}

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Runs []core.Run `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Errorf("got %d runs, want 1", len(resp.Runs))
	}
}

func TestHandleListRuns_InvalidLimit(t *testing.T) {
	srv := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=zero", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleListRuns_NoDatabase(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v", resp["status"])
	}
	if resp["persistence"] != true {
		t.Errorf("persistence = %v, want true", resp["persistence"])
	}
}

func TestHandleHealth_PingFailure(t *testing.T) {
	svc := core.NewService(newFakeStore())
	srv := NewServer(svc, testConfig(), pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !rl.allow("1.2.3.4") {
		t.Error("second request should be allowed")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request should be rejected")
	}
	// Other IPs are unaffected
	if !rl.allow("5.6.7.8") {
		t.Error("different IP should be allowed")
	}
}
