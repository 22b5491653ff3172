package client

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
)

// StoreHTTPClient is the outbound client used to reach the hosted store.
var StoreHTTPClient *http.Client

// Init builds the shared HTTP clients with timeout settings derived from configuration.
func Init() {
	StoreHTTPClient = NewStoreHTTPClient(time.Duration(config.StoreTimeout) * time.Second)
}

// NewStoreHTTPClient returns a traced client. A zero timeout disables the client timeout.
func NewStoreHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		// HTTP/2 disabled, PostgREST gateways occasionally reset h2 streams under load
		TLSNextProto: make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}
