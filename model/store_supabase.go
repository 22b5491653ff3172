package model

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/supabase-community/postgrest-go"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/helper"
	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
	"github.com/fyodorov-ai/tsiolkovsky/common/tracing"
)

const (
	supabaseRESTPath = "/rest/v1"
	// maxErrorBodyBytes caps how much of a failed response is read.
	maxErrorBodyBytes = 64 << 10

	returnMinimal = "minimal"
)

// SupabaseStore keeps tools in a hosted Postgres reached through its PostgREST endpoint.
type SupabaseStore struct {
	restURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseStore builds a store for projectURL authenticated with apiKey.
// Requests go through httpClient's transport and honor its timeout.
func NewSupabaseStore(projectURL, apiKey string, httpClient *http.Client) *SupabaseStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SupabaseStore{
		restURL:    strings.TrimRight(projectURL, "/") + supabaseRESTPath,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// postgrestError is the error document PostgREST returns on failure.
type postgrestError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

type healthCheckInsert struct {
	ToolID       int              `json:"tool_id"`
	HealthStatus string           `json:"health_status"`
	Extra        HealthCheckExtra `json:"extra"`
}

type toolHealthPatch struct {
	APIURL       string `json:"api_url"`
	HealthStatus string `json:"health_status"`
}

// Driver implements Store.
func (s *SupabaseStore) Driver() string {
	return config.StoreDriverSupabase
}

// Dialect implements Store. The hosted database is always Postgres.
func (s *SupabaseStore) Dialect() string {
	return dialectPostgres
}

// InsertTool implements Store.
func (s *SupabaseStore) InsertTool(ctx context.Context, fields *ToolFields) (*Tool, error) {
	var rows []*Tool
	err := s.execute(ctx, "insert tool", "insert", Tool{}.TableName(), &rows,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(Tool{}.TableName()).Insert(fields, false, "", "", "")
		})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &StoreError{Op: "insert tool", Err: errors.New("no row returned")}
	}
	return rows[0], nil
}

// GetTool implements Store.
func (s *SupabaseStore) GetTool(ctx context.Context, id int) (*Tool, error) {
	var rows []*Tool
	err := s.execute(ctx, "get tool", "select", Tool{}.TableName(), &rows,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(Tool{}.TableName()).Select("*", "", false).Eq("id", strconv.Itoa(id))
		})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// ListTools implements Store.
func (s *SupabaseStore) ListTools(ctx context.Context) ([]*Tool, error) {
	var rows []*Tool
	err := s.execute(ctx, "list tools", "select", Tool{}.TableName(), &rows,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(Tool{}.TableName()).Select("*", "", false).
				Order("id", &postgrest.OrderOpts{Ascending: true})
		})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateTool implements Store. Zero matched rows is not an error.
func (s *SupabaseStore) UpdateTool(ctx context.Context, tool *Tool) error {
	var rows []*Tool
	err := s.execute(ctx, "update tool", "update", tool.TableName(), &rows,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(tool.TableName()).Update(&tool.ToolFields, "", "").Eq("id", strconv.Itoa(tool.Id))
		})
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		*tool = *rows[0]
	}
	return nil
}

// DeleteTool implements Store.
func (s *SupabaseStore) DeleteTool(ctx context.Context, id int) error {
	return s.execute(ctx, "delete tool", "delete", Tool{}.TableName(), nil,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(Tool{}.TableName()).Delete(returnMinimal, "").Eq("id", strconv.Itoa(id))
		})
}

// SaveHealthCheck implements Store. PostgREST offers no multi-statement
// transaction, so the history row is written first and a failed tool
// update is only logged.
func (s *SupabaseStore) SaveHealthCheck(ctx context.Context, update *HealthUpdate) (*HealthCheck, error) {
	insert := healthCheckInsert{
		ToolID:       update.ToolID,
		HealthStatus: update.HealthStatus,
		Extra:        HealthCheckExtra{APIURL: update.APIURL},
	}

	var rows []*HealthCheck
	err := s.execute(ctx, "save health check", "insert", HealthCheck{}.TableName(), &rows,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(HealthCheck{}.TableName()).Insert(insert, false, "", "", "")
		})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &StoreError{Op: "save health check", Err: errors.New("no row returned")}
	}

	if update.UpdatesTool() {
		patch := toolHealthPatch{APIURL: update.APIURL, HealthStatus: update.HealthStatus}
		err := s.execute(ctx, "update tool from health check", "update", Tool{}.TableName(), nil,
			func(c *postgrest.Client) *postgrest.FilterBuilder {
				return c.From(Tool{}.TableName()).Update(patch, returnMinimal, "").Eq("id", strconv.Itoa(update.ToolID))
			})
		if err != nil {
			metrics.GlobalRecorder.RecordError("tool_update_failed", "store")
			logger.FromContext(ctx).Warn("health check saved but tool update failed",
				zap.Int("tool_id", update.ToolID),
				zap.String("health_status", update.HealthStatus),
				zap.String("api_url", update.APIURL),
				zap.Error(err))
		}
	}

	return rows[0], nil
}

// ListHealthChecks implements Store.
func (s *SupabaseStore) ListHealthChecks(ctx context.Context, toolID int) ([]*HealthCheck, error) {
	var rows []*HealthCheck
	err := s.execute(ctx, "list health checks", "select", HealthCheck{}.TableName(), &rows,
		func(c *postgrest.Client) *postgrest.FilterBuilder {
			return c.From(HealthCheck{}.TableName()).Select("*", "", false).
				Eq("tool_id", strconv.Itoa(toolID)).
				Order("created_at", &postgrest.OrderOpts{Ascending: false}).
				Order("id", &postgrest.OrderOpts{Ascending: false})
		})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close releases idle connections.
func (s *SupabaseStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// newClient returns a PostgREST client bound to ctx. postgrest-go builds its
// requests without a context, so the returned transport attaches it.
func (s *SupabaseStore) newClient(ctx context.Context) (*postgrest.Client, *postgrestTransport, error) {
	headers := map[string]string{}
	if requestID := tracing.GetTraceIDFromContext(ctx); requestID != "" {
		headers[helper.RequestIdKey] = requestID
	}

	client := postgrest.NewClient(s.restURL, "", headers)
	if client.ClientError != nil {
		return nil, nil, errors.Wrap(client.ClientError, "build postgrest client")
	}
	client.SetApiKey(s.apiKey).SetAuthToken(s.apiKey)

	next := s.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	rt := &postgrestTransport{ctx: ctx, next: next}
	client.Transport.Parent = rt
	return client, rt, nil
}

// execute runs one query and decodes the response rows into out when out is non-nil.
func (s *SupabaseStore) execute(ctx context.Context, op, operation, table string, out any,
	build func(*postgrest.Client) *postgrest.FilterBuilder) (err error) {
	start := time.Now()
	defer func() {
		metrics.GlobalRecorder.RecordDBQuery(start, operation, table, err == nil)
	}()

	if s.httpClient.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.httpClient.Timeout)
		defer cancel()
	}

	client, rt, err := s.newClient(ctx)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}

	query := build(client)
	if client.ClientError != nil {
		return &StoreError{Op: op, Err: errors.Wrap(client.ClientError, "build query")}
	}

	if out == nil {
		_, _, err = query.Execute()
	} else {
		_, err = query.ExecuteTo(out)
	}
	if err != nil {
		if rt.failure != nil {
			rt.failure.Op = op
			return rt.failure
		}
		return &StoreError{Op: op, Err: errors.Wrapf(err, "%s %s", operation, table)}
	}
	return nil
}

// postgrestTransport attaches the caller's context to every request and keeps
// the structured error of a failed response, which postgrest-go flattens to a string.
type postgrestTransport struct {
	ctx     context.Context
	next    http.RoundTripper
	failure *StoreError
}

func (t *postgrestTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req.WithContext(t.ctx))
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "read error response")
	}
	t.failure = decodePostgrestError(resp.StatusCode, raw)
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

func decodePostgrestError(status int, raw []byte) *StoreError {
	var pgErr postgrestError
	if err := json.Unmarshal(raw, &pgErr); err != nil || pgErr.Message == "" {
		msg := http.StatusText(status)
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 {
			msg = string(trimmed)
		}
		return &StoreError{
			Code: strconv.Itoa(status),
			Err:  errors.New(msg),
		}
	}

	return &StoreError{
		Code:    pgErr.Code,
		Details: pgErr.Details,
		Hint:    pgErr.Hint,
		Err:     errors.New(pgErr.Message),
	}
}
