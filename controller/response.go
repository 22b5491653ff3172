package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common"
	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
	"github.com/fyodorov-ai/tsiolkovsky/model"
)

const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeStore      = "store_error"
	ErrorTypeNotFound   = "not_found"
	ErrorTypeServer     = "server_error"
)

const (
	msgToolNotFound      = "Tool not found"
	msgInvalidJSONFormat = "Invalid JSON format"
	msgInvalidYAMLFormat = "Invalid YAML format"
)

// ErrorDetail is the structured error body.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// errorStatus maps a domain error to its HTTP status and structured body.
// Validation failures keep 500, only a missing tool is a 404.
func errorStatus(err error) (int, ErrorDetail) {
	if errors.Is(err, model.ErrNotFound) {
		return http.StatusNotFound, ErrorDetail{Message: msgToolNotFound, Type: ErrorTypeNotFound}
	}

	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusInternalServerError, ErrorDetail{
			Message: vErr.Message,
			Type:    ErrorTypeValidation,
			Field:   vErr.Field,
		}
	}

	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		return http.StatusInternalServerError, ErrorDetail{
			Message: storeErr.Message(),
			Type:    ErrorTypeStore,
			Code:    storeErr.Code,
			Details: storeErr.Details,
			Hint:    storeErr.Hint,
		}
	}

	return http.StatusInternalServerError, ErrorDetail{Message: err.Error(), Type: ErrorTypeServer}
}

// respondError writes {"error": {...}}, or {"error": "Tool not found"} for a missing tool.
func respondError(c *gin.Context, op string, err error) {
	status, detail := errorStatus(err)
	logError(c, op, status, detail, err)
	if status == http.StatusNotFound {
		c.JSON(status, gin.H{"error": detail.Message})
		return
	}
	c.JSON(status, gin.H{"error": detail})
}

// respondErrorMessage writes {"error": "message"}.
func respondErrorMessage(c *gin.Context, op string, err error) {
	status, detail := errorStatus(err)
	logError(c, op, status, detail, err)
	c.JSON(status, gin.H{"error": detail.Message})
}

// decodeBody decodes the request body into v, in format or by Content-Type when
// format is empty. An undecodable payload answers 400, any other failure 500.
// It reports whether the handler may continue.
func decodeBody(c *gin.Context, op, format string, v any) bool {
	var err error
	if format == "" {
		err = common.UnmarshalBodyReusable(c, v)
	} else {
		err = common.UnmarshalBodyReusableAs(c, format, v)
	}
	if err == nil {
		return true
	}

	var decodeErr *common.BodyDecodeError
	if !errors.As(err, &decodeErr) {
		respondError(c, op, errors.Wrap(err, "read request body"))
		return false
	}
	message := msgInvalidJSONFormat
	if decodeErr.Format == common.BodyFormatYAML {
		message = msgInvalidYAMLFormat
	}
	respondBadRequest(c, op, message, err)
	return false
}

// respondBadRequest answers an undecodable body.
func respondBadRequest(c *gin.Context, op, message string, err error) {
	gmw.GetLogger(c).Warn("invalid request body",
		zap.String("op", op),
		zap.Error(err))
	metrics.GlobalRecorder.RecordError("invalid_request", "controller")
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func logError(c *gin.Context, op string, status int, detail ErrorDetail, err error) {
	metrics.GlobalRecorder.RecordError(detail.Type, "controller")
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status_code", status),
		zap.String("error_type", detail.Type),
		zap.Error(err),
	}
	// validation failures answer 500 but are the caller's mistake
	if status < http.StatusInternalServerError || model.IsValidationError(err) {
		gmw.GetLogger(c).Warn("request failed", fields...)
		return
	}
	gmw.GetLogger(c).Error("request failed", fields...)
}
