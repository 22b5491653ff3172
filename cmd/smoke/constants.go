package main

import "time"

const (
	defaultAPIBase = "http://localhost:3000"
	defaultTimeout = 30 * time.Second

	maxResponseBodySize = 1 << 20 // 1 MiB
	maxLoggedBodyBytes  = 2048

	maxTransientRetries = 3
	initialRetryBackoff = 250 * time.Millisecond
	maxRetryBackoff     = 2 * time.Second

	userAgent = "tsiolkovsky-smoke/1.0"
)
