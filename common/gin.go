package common

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/fyodorov-ai/tsiolkovsky/common/ctxkey"
)

const (
	// BodyFormatJSON decodes request bodies as JSON.
	BodyFormatJSON = "json"
	// BodyFormatYAML decodes request bodies as YAML.
	BodyFormatYAML = "yaml"
)

// BodyDecodeError reports a request body that could not be decoded in the expected format.
type BodyDecodeError struct {
	Format string
	Err    error
}

func (e *BodyDecodeError) Error() string {
	return "decode " + e.Format + " request body: " + e.Err.Error()
}

func (e *BodyDecodeError) Unwrap() error {
	return e.Err
}

// GetRequestBody reads and caches the request body so it can be reused later in the handler chain.
func GetRequestBody(c *gin.Context) (requestBody []byte, err error) {
	if requestBodyCache, _ := c.Get(ctxkey.KeyRequestBody); requestBodyCache != nil {
		return requestBodyCache.([]byte), nil
	}
	if c.Request.Body == nil {
		c.Set(ctxkey.KeyRequestBody, []byte{})
		return []byte{}, nil
	}
	requestBody, err = io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body failed")
	}
	_ = c.Request.Body.Close()
	c.Set(ctxkey.KeyRequestBody, requestBody)

	return requestBody, nil
}

// UnmarshalBodyReusable decodes the request body into v, picking YAML when the
// Content-Type says so and JSON otherwise. The body stays readable afterwards.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	format := BodyFormatJSON
	contentType := strings.ToLower(c.Request.Header.Get("Content-Type"))
	if strings.Contains(contentType, "yaml") {
		format = BodyFormatYAML
	}
	return UnmarshalBodyReusableAs(c, format, v)
}

// UnmarshalBodyReusableAs decodes the request body into v using the given format.
// An empty body leaves v untouched. Undecodable payloads yield a *BodyDecodeError.
func UnmarshalBodyReusableAs(c *gin.Context, format string, v any) error {
	if v == nil || reflect.TypeOf(v).Kind() != reflect.Ptr {
		return errors.Errorf("UnmarshalBodyReusableAs only accept pointer, got %v", reflect.TypeOf(v))
	}

	requestBody, err := GetRequestBody(c)
	if err != nil {
		return errors.Wrap(err, "get request body failed")
	}

	if err = LogClientRequestPayload(c, format, DefaultLogBodyLimit); err != nil {
		return errors.Wrap(err, "log client request payload failed")
	}

	if len(bytes.TrimSpace(requestBody)) != 0 {
		switch format {
		case BodyFormatYAML:
			err = yaml.Unmarshal(requestBody, v)
		case BodyFormatJSON:
			err = json.Unmarshal(requestBody, v)
		default:
			return errors.Errorf("unsupported body format %q", format)
		}
		if err != nil {
			return &BodyDecodeError{Format: format, Err: err}
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	return nil
}

// LogClientRequestPayload emits a DEBUG log for the inbound request payload once per request.
func LogClientRequestPayload(c *gin.Context, label string, limit int) error {
	if logged, ok := c.Get(ctxkey.ClientRequestPayloadLogged); ok {
		if loggedFlag, ok := logged.(bool); ok && loggedFlag {
			return nil
		}
	}

	body, err := GetRequestBody(c)
	if err != nil {
		return errors.Wrap(err, "get request body failed")
	}

	preview, truncated := SanitizePayloadForLogging(body, limit)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("url", c.Request.URL.String()),
		zap.Int("body_bytes", len(body)),
		zap.Bool("body_truncated", truncated),
		zap.ByteString("body_preview", preview),
	}
	if label != "" {
		fields = append(fields, zap.String("label", label))
	}

	gmw.GetLogger(c).Debug("client request received", fields...)
	c.Set(ctxkey.ClientRequestPayloadLogged, true)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	return nil
}
