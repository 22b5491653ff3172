package model

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const testSupabaseKey = "test-service-role-key"

type recordedCall struct {
	Method    string
	Path      string
	Query     map[string]string
	Prefer    string
	Body      string
	RequestID string
}

// fakePostgrest records calls and answers them with the queued responders.
type fakePostgrest struct {
	mu        sync.Mutex
	calls     []recordedCall
	responses []func(w http.ResponseWriter)
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("apikey") != testSupabaseKey || r.Header.Get("Authorization") != "Bearer "+testSupabaseKey {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
		return
	}

	body, _ := io.ReadAll(r.Body)
	query := map[string]string{}
	for k, v := range r.URL.Query() {
		query[k] = v[0]
	}
	f.calls = append(f.calls, recordedCall{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     query,
		Prefer:    r.Header.Get("Prefer"),
		Body:      string(body),
		RequestID: r.Header.Get("X-Request-Id"),
	})

	if len(f.responses) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	respond := f.responses[0]
	f.responses = f.responses[1:]
	respond(w)
}

func jsonResponse(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func setupSupabaseStore(t *testing.T, apiKey string, responses ...func(w http.ResponseWriter)) (*SupabaseStore, *fakePostgrest) {
	t.Helper()
	fake := &fakePostgrest{responses: responses}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewSupabaseStore(srv.URL, apiKey, srv.Client()), fake
}

const storedToolJSON = `{"id":1,"name_for_human":"Weather","name_for_ai":"weather",
"description_for_human":"Forecasts for humans","description_for_ai":"Returns the forecast for a city",
"api_type":"openapi","api_url":"https://weather.example/openapi.json","logo_url":"https://weather.example/logo.png",
"contact_email":"ops@weather.example","legal_info_url":"https://weather.example/legal",
"created_at":"2024-03-01T10:00:00.123456+00:00"}`

func TestSupabaseStore_InsertTool(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey, jsonResponse(http.StatusCreated, "["+storedToolJSON+"]"))

	tool, err := CreateTool(context.Background(), store, sampleToolFields())
	require.NoError(t, err)
	require.Equal(t, 1, tool.Id)
	require.Equal(t, "Weather", tool.NameForHuman)
	require.Equal(t, 2024, tool.CreatedAt.Year())

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	require.Equal(t, http.MethodPost, call.Method)
	require.Equal(t, "/rest/v1/tools", call.Path)
	require.Equal(t, "return=representation", call.Prefer)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(call.Body), &sent))
	require.Equal(t, "weather", sent["name_for_ai"])
	require.NotContains(t, sent, "id")
}

func TestSupabaseStore_GetToolNotFound(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey, jsonResponse(http.StatusOK, "[]"))

	_, err := GetTool(context.Background(), store, "7")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, "/rest/v1/tools", fake.calls[0].Path)
	require.Equal(t, "eq.7", fake.calls[0].Query["id"])
	require.Equal(t, "*", fake.calls[0].Query["select"])
}

func TestSupabaseStore_ErrorsCarryPostgrestDetails(t *testing.T) {
	store, _ := setupSupabaseStore(t, testSupabaseKey, jsonResponse(http.StatusConflict,
		`{"message":"duplicate key value violates unique constraint","code":"23505","details":"Key (name_for_ai)=(weather) already exists.","hint":"pick another name"}`))

	_, err := CreateTool(context.Background(), store, sampleToolFields())
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "23505", storeErr.Code)
	require.Equal(t, "Key (name_for_ai)=(weather) already exists.", storeErr.Details)
	require.Equal(t, "pick another name", storeErr.Hint)
	require.Equal(t, "duplicate key value violates unique constraint", storeErr.Message())
}

func TestSupabaseStore_NonJSONErrorBody(t *testing.T) {
	store, _ := setupSupabaseStore(t, testSupabaseKey, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	_, err := ListTools(context.Background(), store)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "502", storeErr.Code)
	require.Equal(t, "upstream unavailable", storeErr.Message())
}

func TestSupabaseStore_WrongCredential(t *testing.T) {
	store, _ := setupSupabaseStore(t, "wrong-key")

	_, err := ListTools(context.Background(), store)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "Invalid API key", storeErr.Message())
}

func TestSupabaseStore_UpdateAndDelete(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey,
		jsonResponse(http.StatusOK, "["+storedToolJSON+"]"),
		jsonResponse(http.StatusOK, `[{"id":1,"name_for_human":"Weather Pro","name_for_ai":"weather",
"description_for_human":"Forecasts for humans","description_for_ai":"Returns the forecast for a city",
"api_type":"openapi","api_url":"https://weather.example/openapi.json","logo_url":"https://weather.example/logo.png",
"contact_email":"ops@weather.example","legal_info_url":"https://weather.example/legal"}]`),
		func(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) },
	)
	ctx := context.Background()

	tool, err := UpdateTool(ctx, store, "1", &ToolPatch{NameForHuman: strPtr("Weather Pro")})
	require.NoError(t, err)
	require.Equal(t, "Weather Pro", tool.NameForHuman)

	require.NoError(t, DeleteTool(ctx, store, "1"))

	require.Len(t, fake.calls, 3)
	require.Equal(t, http.MethodGet, fake.calls[0].Method)
	require.Equal(t, http.MethodPatch, fake.calls[1].Method)
	require.Equal(t, "eq.1", fake.calls[1].Query["id"])
	require.Contains(t, fake.calls[1].Body, `"name_for_human":"Weather Pro"`)
	require.Equal(t, http.MethodDelete, fake.calls[2].Method)
	require.Equal(t, "return=minimal", fake.calls[2].Prefer)
}

func TestSupabaseStore_HealthCheckHistoryFirst(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey,
		jsonResponse(http.StatusCreated, `[{"id":10,"tool_id":1,"health_status":"healthy","extra":{"api_url":"https://weather.example/v2"},"created_at":"2024-03-01T10:00:00+00:00"}]`),
		jsonResponse(http.StatusInternalServerError, `{"message":"tool update failed"}`),
	)

	update, err := NewHealthUpdate("1", "healthy", "https://weather.example/v2")
	require.NoError(t, err)

	// a failed tool update is logged, the report still succeeds
	check, err := SaveHealthCheck(context.Background(), store, update)
	require.NoError(t, err)
	require.Equal(t, 10, check.Id)
	require.Equal(t, "https://weather.example/v2", check.Extra.APIURL)

	require.Len(t, fake.calls, 2)
	require.Equal(t, http.MethodPost, fake.calls[0].Method)
	require.Equal(t, "/rest/v1/tools_health_checks", fake.calls[0].Path)
	require.JSONEq(t, `{"tool_id":1,"health_status":"healthy","extra":{"api_url":"https://weather.example/v2"}}`, fake.calls[0].Body)
	require.Equal(t, http.MethodPatch, fake.calls[1].Method)
	require.Equal(t, "/rest/v1/tools", fake.calls[1].Path)
	require.JSONEq(t, `{"api_url":"https://weather.example/v2","health_status":"healthy"}`, fake.calls[1].Body)
}

func TestSupabaseStore_HealthCheckFailureSkipsToolUpdate(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey,
		jsonResponse(http.StatusBadRequest, `{"message":"insert failed","code":"PGRST204"}`),
	)

	update, err := NewHealthUpdate("1", "healthy", "https://weather.example/v2")
	require.NoError(t, err)

	_, err = SaveHealthCheck(context.Background(), store, update)
	require.Error(t, err)
	require.Len(t, fake.calls, 1)
}

func TestSupabaseStore_ListHealthChecks(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey, jsonResponse(http.StatusOK,
		`[{"id":2,"tool_id":4,"health_status":"down","extra":{}},{"id":1,"tool_id":4,"health_status":"healthy","extra":{}}]`))

	checks, err := GetHealthChecks(context.Background(), store, 4)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	require.Equal(t, "down", checks[0].HealthStatus)

	require.Equal(t, "eq.4", fake.calls[0].Query["tool_id"])
	require.Equal(t, "created_at.desc.nullslast,id.desc.nullslast", fake.calls[0].Query["order"])
}

func TestSupabaseStore_PropagatesTraceID(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey, jsonResponse(http.StatusOK, "[]"))

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "list")
	defer span.End()

	_, err := store.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, fake.calls, 1)
	require.Equal(t, span.SpanContext().TraceID().String(), fake.calls[0].RequestID)
}

func TestSupabaseStore_HonorsClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	httpClient := srv.Client()
	httpClient.Timeout = 50 * time.Millisecond
	store := NewSupabaseStore(srv.URL+"/", testSupabaseKey, httpClient)

	start := time.Now()
	_, err := store.ListTools(context.Background())
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "list tools", storeErr.Op)
	require.Less(t, time.Since(start), time.Second)
}

func TestSupabaseStore_UpdateFromHealthCheckAsksForMinimalReturn(t *testing.T) {
	store, fake := setupSupabaseStore(t, testSupabaseKey,
		jsonResponse(http.StatusCreated, `[{"id":3,"tool_id":1,"health_status":"up","extra":{"api_url":"https://weather.example/v3"}}]`),
		func(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) },
	)

	update, err := NewHealthUpdate("1", "up", "https://weather.example/v3")
	require.NoError(t, err)

	_, err = SaveHealthCheck(context.Background(), store, update)
	require.NoError(t, err)
	require.Len(t, fake.calls, 2)
	require.Equal(t, "return=representation", fake.calls[0].Prefer)
	require.Equal(t, "return=minimal", fake.calls[1].Prefer)
	require.Equal(t, "eq.1", fake.calls[1].Query["id"])
}
