package helper

const (
	// RequestIdKey is the response header carrying the current request identifier.
	RequestIdKey = "X-Request-Id"
)

// MaskAPIKey returns a masked version of a credential for safe logging.
// It keeps the first 6 and last 4 characters. Keys shorter than 12 characters become "***".
func MaskAPIKey(key string) string {
	if len(key) < 12 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}

// MessageWithRequestId appends the request id to message when one is known.
func MessageWithRequestId(message string, id string) string {
	if id == "" {
		return message
	}
	return message + " (request id: " + id + ")"
}
