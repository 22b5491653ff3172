package common

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// DefaultLogBodyLimit defines the maximum number of bytes to emit for log previews.
	DefaultLogBodyLimit = 4096
	// LogTruncationSuffix marks truncated log values.
	LogTruncationSuffix = "...[truncated]"
	redactedPlaceholder = "[redacted]"
)

// sensitiveKeys lists JSON keys whose values never reach the logs.
var sensitiveKeys = []string{"apikey", "api_key", "authorization", "password", "secret", "token"}

// SanitizePayloadForLogging returns a log-safe preview of body and whether it was truncated.
// JSON payloads get secret-looking keys redacted and long strings shortened.
func SanitizePayloadForLogging(body []byte, limit int) ([]byte, bool) {
	if limit <= 0 {
		return body, false
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var payload any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			sanitized := sanitizeJSONValueForLogging("", payload, limit)
			if sanitizedBytes, err := json.Marshal(sanitized); err == nil {
				truncated := len(sanitizedBytes) > limit
				if truncated {
					sanitizedBytes = truncateWithSuffix(sanitizedBytes, limit)
				}
				return sanitizedBytes, truncated
			}
		}
	}

	if len(body) <= limit {
		return body, false
	}
	return body[:limit], true
}

func sanitizeJSONValueForLogging(key string, value any, limit int) any {
	if isSensitiveKey(key) {
		return redactedPlaceholder
	}
	switch v := value.(type) {
	case map[string]any:
		sanitized := make(map[string]any, len(v))
		for innerKey, inner := range v {
			sanitized[innerKey] = sanitizeJSONValueForLogging(innerKey, inner, limit)
		}
		return sanitized
	case []any:
		sanitized := make([]any, len(v))
		for i, inner := range v {
			sanitized[i] = sanitizeJSONValueForLogging("", inner, limit)
		}
		return sanitized
	case string:
		if len(v) <= limit {
			return v
		}
		return string(truncateWithSuffix([]byte(v), limit))
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	for _, candidate := range sensitiveKeys {
		if strings.Contains(lower, candidate) {
			return true
		}
	}
	return false
}

// truncateWithSuffix cuts data to limit bytes, the tail replaced by LogTruncationSuffix.
func truncateWithSuffix(data []byte, limit int) []byte {
	if limit <= 0 {
		return nil
	}
	suffix := []byte(LogTruncationSuffix)
	if limit <= len(suffix) {
		return append([]byte{}, suffix[:limit]...)
	}
	headLen := limit - len(suffix)
	truncated := make([]byte, 0, limit)
	truncated = append(truncated, data[:headLen]...)
	truncated = append(truncated, suffix...)
	return truncated
}
