package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/fyodorov-ai/tsiolkovsky/model"
)

// run executes the lifecycle suite against SMOKE_API_BASE.
func run(ctx context.Context, logger glog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	logger.Info("smoke suite started", zap.String("api_base", cfg.APIBase))

	results, err := runSuite(ctx, client, cfg.APIBase)
	report(logger, results)
	return err
}

// ping checks liveness only.
func ping(ctx context.Context, logger glog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	result := performRequest(ctx, client, cfg.APIBase, requestCall{
		Label:      "liveness",
		Method:     http.MethodGet,
		Path:       "/health",
		WantStatus: http.StatusOK,
	})
	report(logger, []stepResult{result})
	if !result.Success {
		return errors.Errorf("liveness check failed: %s", result.ErrorReason)
	}
	return nil
}

// suite carries state between the lifecycle steps.
type suite struct {
	client  *http.Client
	baseURL string
	results []stepResult

	toolID    int
	nameForAI string
}

// runSuite walks one tool through create, read, update, health report and delete.
// It stops at the first failed step but always deletes the tool it created.
func runSuite(ctx context.Context, client *http.Client, baseURL string) ([]stepResult, error) {
	s := &suite{
		client:    client,
		baseURL:   baseURL,
		nameForAI: "smoke_" + uuid.NewString()[:8],
	}

	steps := []func(context.Context) error{
		s.checkBanner,
		s.checkRejectsInvalidTool,
		s.createTool,
		s.readTool,
		s.listTools,
		s.updateTool,
		s.readPlugin,
		s.reportHealth,
		s.readHealthHistory,
	}

	var suiteErr error
	for _, step := range steps {
		if err := step(ctx); err != nil {
			suiteErr = err
			break
		}
	}

	if s.toolID > 0 {
		if err := s.deleteTool(ctx); err != nil && suiteErr == nil {
			suiteErr = err
		}
	}

	return s.results, suiteErr
}

// call records the result of rc and fails unless the expected status came back.
func (s *suite) call(ctx context.Context, rc requestCall) (stepResult, error) {
	result := performRequest(ctx, s.client, s.baseURL, rc)
	s.results = append(s.results, result)
	if !result.Success {
		return result, errors.Errorf("step %q failed: %s", rc.Label, result.ErrorReason)
	}
	return result, nil
}

func (s *suite) toolPath(suffix string) string {
	return "/tools/" + strconv.Itoa(s.toolID) + suffix
}

func (s *suite) checkBanner(ctx context.Context) error {
	if _, err := s.call(ctx, requestCall{Label: "banner", Method: http.MethodGet, Path: "/", WantStatus: http.StatusOK}); err != nil {
		return err
	}
	_, err := s.call(ctx, requestCall{Label: "liveness", Method: http.MethodGet, Path: "/health", WantStatus: http.StatusOK})
	return err
}

func (s *suite) checkRejectsInvalidTool(ctx context.Context) error {
	if _, err := s.call(ctx, requestCall{
		Label:      "reject malformed json",
		Method:     http.MethodPost,
		Path:       "/tools",
		RawBody:    `{"name_for_human":`,
		WantStatus: http.StatusBadRequest,
	}); err != nil {
		return err
	}

	invalid := s.toolFields()
	invalid.NameForHuman = ""
	result, err := s.call(ctx, requestCall{
		Label:      "reject missing field",
		Method:     http.MethodPost,
		Path:       "/tools",
		Body:       invalid,
		WantStatus: http.StatusInternalServerError,
	})
	if err != nil {
		return err
	}

	var body struct {
		Error struct {
			Type  string `json:"type"`
			Field string `json:"field"`
		} `json:"error"`
	}
	if err := decodeResult(result, &body); err != nil {
		return err
	}
	if body.Error.Field != "name_for_human" {
		return errors.Errorf("validation error names field %q, want name_for_human", body.Error.Field)
	}
	return nil
}

func (s *suite) createTool(ctx context.Context) error {
	result, err := s.call(ctx, requestCall{
		Label:      "create tool",
		Method:     http.MethodPost,
		Path:       "/tools",
		Body:       s.toolFields(),
		WantStatus: http.StatusCreated,
	})
	if err != nil {
		return err
	}

	var body struct {
		Tool model.Tool `json:"tool"`
	}
	if err := decodeResult(result, &body); err != nil {
		return err
	}
	if body.Tool.Id <= 0 {
		return errors.Errorf("created tool has no id: %s", result.ResponseBody)
	}
	s.toolID = body.Tool.Id
	return nil
}

func (s *suite) readTool(ctx context.Context) error {
	result, err := s.call(ctx, requestCall{Label: "get tool", Method: http.MethodGet, Path: s.toolPath(""), WantStatus: http.StatusOK})
	if err != nil {
		return err
	}

	var tool model.Tool
	if err := decodeResult(result, &tool); err != nil {
		return err
	}
	if tool.NameForAI != s.nameForAI {
		return errors.Errorf("get tool returned name_for_ai %q, want %q", tool.NameForAI, s.nameForAI)
	}
	return nil
}

func (s *suite) listTools(ctx context.Context) error {
	result, err := s.call(ctx, requestCall{Label: "list tools", Method: http.MethodGet, Path: "/tools", WantStatus: http.StatusOK})
	if err != nil {
		return err
	}

	var tools []model.Tool
	if err := decodeResult(result, &tools); err != nil {
		return err
	}
	for _, tool := range tools {
		if tool.Id == s.toolID {
			return nil
		}
	}
	return errors.Errorf("tool %d missing from list", s.toolID)
}

func (s *suite) updateTool(ctx context.Context) error {
	description := "Smoke-tested at " + time.Now().UTC().Format(time.RFC3339)
	result, err := s.call(ctx, requestCall{
		Label:      "update tool",
		Method:     http.MethodPut,
		Path:       s.toolPath(""),
		Body:       model.ToolPatch{DescriptionForHuman: &description},
		WantStatus: http.StatusOK,
	})
	if err != nil {
		return err
	}

	var tool model.Tool
	if err := decodeResult(result, &tool); err != nil {
		return err
	}
	if tool.DescriptionForHuman != description || tool.NameForAI != s.nameForAI {
		return errors.Errorf("partial update did not merge: %s", result.ResponseBody)
	}
	return nil
}

func (s *suite) readPlugin(ctx context.Context) error {
	result, err := s.call(ctx, requestCall{Label: "plugin manifest", Method: http.MethodGet, Path: s.toolPath("/plugin"), WantStatus: http.StatusOK})
	if err != nil {
		return err
	}

	var manifest model.PluginManifest
	if err := decodeResult(result, &manifest); err != nil {
		return err
	}
	if manifest.NameForModel != s.nameForAI {
		return errors.Errorf("plugin manifest name_for_model %q, want %q", manifest.NameForModel, s.nameForAI)
	}
	return nil
}

func (s *suite) reportHealth(ctx context.Context) error {
	const newURL = "https://smoke.example/openapi-v2.json"
	if _, err := s.call(ctx, requestCall{
		Label:      "report healthy",
		Method:     http.MethodPost,
		Path:       s.toolPath("/health"),
		Body:       map[string]string{"health_status": "up"},
		WantStatus: http.StatusCreated,
	}); err != nil {
		return err
	}
	if _, err := s.call(ctx, requestCall{
		Label:      "report moved",
		Method:     http.MethodPost,
		Path:       s.toolPath("/health"),
		Body:       map[string]string{"health_status": "down", "api_url": newURL},
		WantStatus: http.StatusCreated,
	}); err != nil {
		return err
	}

	result, err := s.call(ctx, requestCall{Label: "get moved tool", Method: http.MethodGet, Path: s.toolPath(""), WantStatus: http.StatusOK})
	if err != nil {
		return err
	}
	var tool model.Tool
	if err := decodeResult(result, &tool); err != nil {
		return err
	}
	if tool.APIURL != newURL {
		return errors.Errorf("health report did not move api_url: got %q", tool.APIURL)
	}
	return nil
}

func (s *suite) readHealthHistory(ctx context.Context) error {
	result, err := s.call(ctx, requestCall{Label: "health history", Method: http.MethodGet, Path: s.toolPath("/health"), WantStatus: http.StatusOK})
	if err != nil {
		return err
	}

	var checks []model.HealthCheck
	if err := decodeResult(result, &checks); err != nil {
		return err
	}
	if len(checks) < 2 {
		return errors.Errorf("health history has %d rows, want at least 2", len(checks))
	}
	if checks[0].HealthStatus != "down" {
		return errors.Errorf("latest health check is %q, want down", checks[0].HealthStatus)
	}
	return nil
}

func (s *suite) deleteTool(ctx context.Context) error {
	if _, err := s.call(ctx, requestCall{Label: "delete tool", Method: http.MethodDelete, Path: s.toolPath(""), WantStatus: http.StatusNoContent}); err != nil {
		return err
	}
	_, err := s.call(ctx, requestCall{Label: "get deleted tool", Method: http.MethodGet, Path: s.toolPath(""), WantStatus: http.StatusNotFound})
	return err
}

func (s *suite) toolFields() model.ToolFields {
	return model.ToolFields{
		NameForHuman:        "Smoke Test Tool",
		NameForAI:           s.nameForAI,
		DescriptionForHuman: "Created by the smoke harness",
		DescriptionForAI:    "Do not call, exists only while the smoke suite runs",
		APIType:             "openapi",
		APIURL:              "https://smoke.example/openapi.json",
		LogoURL:             "https://smoke.example/logo.png",
		ContactEmail:        "smoke@smoke.example",
		LegalInfoURL:        "https://smoke.example/legal",
	}
}

// report logs one line per step and a summary.
func report(logger glog.Logger, results []stepResult) {
	var passed, failed, skipped int
	for _, r := range results {
		fields := []zap.Field{
			zap.String("step", r.Label),
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Int("status", r.StatusCode),
			zap.Duration("duration", r.Duration),
			zap.Int("attempts", r.AttemptCount),
		}
		switch {
		case r.Success:
			passed++
			logger.Info("PASS", fields...)
		case r.Skipped:
			skipped++
			logger.Warn("SKIP", append(fields, zap.String("reason", r.ErrorReason))...)
		default:
			failed++
			logger.Error("FAIL", append(fields,
				zap.String("reason", r.ErrorReason),
				zap.String("request", r.RequestBody),
				zap.String("response", r.ResponseBody))...)
		}
	}

	logger.Info("smoke suite summary",
		zap.Int("passed", passed),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped))
}
