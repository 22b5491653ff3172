package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

// requestCall describes one call against the API and the status it must answer.
type requestCall struct {
	Label       string
	Method      string
	Path        string
	Body        any
	RawBody     string
	ContentType string
	WantStatus  int
}

// stepResult is the outcome of one requestCall.
type stepResult struct {
	Label        string
	Method       string
	Path         string
	StatusCode   int
	Success      bool
	Skipped      bool
	ErrorReason  string
	RequestBody  string
	ResponseBody string
	Duration     time.Duration
	AttemptCount int

	raw []byte
}

// performRequest issues call, retrying transient failures with exponential backoff.
func performRequest(ctx context.Context, client *http.Client, baseURL string, call requestCall) (result stepResult) {
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	result = stepResult{Label: call.Label, Method: call.Method, Path: call.Path}

	payload, contentType, err := encodeBody(call)
	if err != nil {
		result.ErrorReason = fmt.Sprintf("marshal payload: %v", err)
		return result
	}
	result.RequestBody = truncateString(string(payload), maxLoggedBodyBytes)

	var lastErr error
	backoff := initialRetryBackoff
	for attempt := 1; attempt <= maxTransientRetries; attempt++ {
		attemptRes, attemptErr := doRequestOnce(ctx, client, baseURL, call, payload, contentType)
		attemptRes.Label = result.Label
		attemptRes.Method = result.Method
		attemptRes.Path = result.Path
		attemptRes.RequestBody = result.RequestBody
		attemptRes.AttemptCount = attempt
		if attemptErr == nil {
			return attemptRes
		}

		lastErr = attemptErr
		result = attemptRes
		if !isRetryableAttemptError(call.WantStatus, attemptRes.StatusCode, attemptRes.ResponseBody) {
			result.ErrorReason = attemptErr.Error()
			return result
		}

		select {
		case <-ctx.Done():
			result.ErrorReason = fmt.Sprintf("request cancelled: %v", ctx.Err())
			return result
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxRetryBackoff {
			backoff = maxRetryBackoff
		}
	}

	result.ErrorReason = fmt.Sprintf("transient error after retries: %v", lastErr)
	// an unreachable or overloaded server is not a regression in the API itself
	if result.StatusCode == http.StatusBadGateway ||
		result.StatusCode == http.StatusServiceUnavailable ||
		result.StatusCode == http.StatusGatewayTimeout {
		result.Skipped = true
	}
	return result
}

func encodeBody(call requestCall) ([]byte, string, error) {
	if call.RawBody != "" {
		contentType := call.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		return []byte(call.RawBody), contentType, nil
	}
	if call.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(call.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "marshal body")
	}
	return payload, "application/json", nil
}

// doRequestOnce issues the HTTP request once. A status other than call.WantStatus is an error.
func doRequestOnce(ctx context.Context, client *http.Client, baseURL string, call requestCall, payload []byte, contentType string) (result stepResult, err error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, baseURL+call.Path, body)
	if err != nil {
		return result, errors.Wrap(err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return result, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	result.raw = respBody
	if len(respBody) > 0 {
		result.ResponseBody = truncateString(string(respBody), maxLoggedBodyBytes)
	}
	if readErr != nil {
		return result, errors.Wrap(readErr, "read response")
	}

	if resp.StatusCode != call.WantStatus {
		return result, errors.Errorf("status %s, want %d: %s", resp.Status, call.WantStatus, snippet(respBody))
	}

	result.Success = true
	return result, nil
}

// isRetryableAttemptError reports whether the attempt should be retried.
func isRetryableAttemptError(wantStatus, statusCode int, responseBody string) bool {
	if statusCode == 0 {
		return true
	}
	if statusCode >= 500 && statusCode != wantStatus {
		lower := strings.ToLower(responseBody)
		if statusCode != http.StatusInternalServerError {
			return true
		}
		return strings.Contains(lower, "timeout") ||
			strings.Contains(lower, "temporarily") ||
			strings.Contains(lower, "database is locked")
	}
	return false
}

// decodeResult unmarshals the full response body of a successful step into v.
func decodeResult(result stepResult, v any) error {
	if err := json.Unmarshal(result.raw, v); err != nil {
		return errors.Wrapf(err, "decode %s response", result.Label)
	}
	return nil
}

func truncateString(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}

func snippet(body []byte) string {
	return truncateString(strings.TrimSpace(string(body)), 256)
}
