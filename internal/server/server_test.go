package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/nlq"
	"github.com/koustreak/querytalk/internal/sample"
)

type fakeInterpreter struct {
	result nlq.Result
	err    error
}

func (f *fakeInterpreter) Interpret(ctx context.Context, request string) (nlq.Result, error) {
	return f.result, f.err
}

type fakeGenerator struct {
	set     []sample.Sample
	byKw    []sample.Sample
	setErr  error
	byKwErr error
}

func (f *fakeGenerator) GenerateSet(ctx context.Context) ([]sample.Sample, error) {
	return f.set, f.setErr
}

func (f *fakeGenerator) GenerateWithKeyword(ctx context.Context, keyword string) ([]sample.Sample, error) {
	return f.byKw, f.byKwErr
}

type fakeDB struct {
	info    *database.SchemaInfo
	pingErr error
}

func (f *fakeDB) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeDB) Close()                         {}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	return nil, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) database.Row { return nil }
func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (int64, error)   { return 0, nil }
func (f *fakeDB) ListTables(ctx context.Context) ([]string, error)                   { return nil, nil }

func (f *fakeDB) InspectSchema(ctx context.Context) (*database.SchemaInfo, error) {
	if f.info == nil {
		return nil, errs.New(errs.ErrKindConnectionFailed, "cannot reach database")
	}
	return f.info, nil
}

func newTestServer(interp Interpreter, gen SampleGenerator, db database.DB) http.Handler {
	return New(interp, gen, db, nil).Router()
}

func TestHandleInterpret(t *testing.T) {
	interp := &fakeInterpreter{result: nlq.Result{
		SQL:     "SELECT * FROM `orders`",
		OK:      true,
		Columns: []string{"order_id"},
		Rows:    []map[string]any{{"order_id": 1}},
	}}
	handler := newTestServer(interp, &fakeGenerator{}, &fakeDB{})

	req := httptest.NewRequest(http.MethodPost, "/v1/interpret",
		strings.NewReader(`{"request":"show orders"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body interpretResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "SELECT * FROM `orders`", body.SQL)
	assert.Len(t, body.Rows, 1)
}

func TestHandleInterpretBadBody(t *testing.T) {
	handler := newTestServer(&fakeInterpreter{}, &fakeGenerator{}, &fakeDB{})

	req := httptest.NewRequest(http.MethodPost, "/v1/interpret", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleInterpretUpstreamFailure(t *testing.T) {
	interp := &fakeInterpreter{err: errs.New(errs.ErrKindConnectionFailed, "cannot reach database")}
	handler := newTestServer(interp, &fakeGenerator{}, &fakeDB{})

	req := httptest.NewRequest(http.MethodPost, "/v1/interpret",
		strings.NewReader(`{"request":"show orders"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleSamples(t *testing.T) {
	gen := &fakeGenerator{set: []sample.Sample{
		{SQL: "SELECT 1", Description: "First."},
		{SQL: "SELECT 2", Description: "Second."},
	}}
	handler := newTestServer(&fakeInterpreter{}, gen, &fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sample-queries", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []sampleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "SELECT 1", body[0].SQL)
}

func TestHandleSamplesWithKeyword(t *testing.T) {
	gen := &fakeGenerator{byKw: []sample.Sample{
		{SQL: "SELECT 1 JOIN x", Description: "Joined."},
		{SQL: "SELECT 2 JOIN y", Description: "Also joined."},
	}}
	handler := newTestServer(&fakeInterpreter{}, gen, &fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sample-queries?keyword=join", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []sampleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "SELECT 1 JOIN x", body[0].SQL)
}

func TestHandleSamplesKeywordUnmatched(t *testing.T) {
	// An exhausted attempt budget is an empty list, not an error.
	handler := newTestServer(&fakeInterpreter{}, &fakeGenerator{}, &fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sample-queries?keyword=frobnicate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []sampleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body)
}

func TestHandleSamplesUpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{byKwErr: errs.New(errs.ErrKindConnectionFailed, "cannot reach database")}
	handler := newTestServer(&fakeInterpreter{}, gen, &fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sample-queries?keyword=join", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleSchema(t *testing.T) {
	db := &fakeDB{info: &database.SchemaInfo{Tables: []database.TableInfo{
		{Name: "orders", Columns: []database.ColumnInfo{
			{Name: "order_id", DataType: "int"},
			{Name: "status", DataType: "varchar(20)"},
		}},
	}}}
	handler := newTestServer(&fakeInterpreter{}, &fakeGenerator{}, db)

	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tables []schemaTable `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tables, 1)
	assert.Equal(t, "orders", body.Tables[0].Name)
	assert.Equal(t, "numeric", body.Tables[0].Columns[0].Class)
	assert.Equal(t, "categorical", body.Tables[0].Columns[1].Class)
}

func TestHandleHealth(t *testing.T) {
	handler := newTestServer(&fakeInterpreter{}, &fakeGenerator{}, &fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	sick := newTestServer(&fakeInterpreter{}, &fakeGenerator{},
		&fakeDB{pingErr: errs.New(errs.ErrKindConnectionFailed, "down")})
	rec = httptest.NewRecorder()
	sick.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(&fakeInterpreter{}, &fakeGenerator{}, &fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
