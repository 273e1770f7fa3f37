// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing instruments test runs with OpenTelemetry spans and
// Prometheus-compatible metrics.
package tracing

import (
	"strings"

	"github.com/tombee/gherkit/pkg/errors"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config holds observability configuration.
type Config struct {
	// ServiceName identifies this process in traces.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// Exporter selects where spans go: none, stdout, otlp-http or otlp-grpc.
	Exporter string

	// Endpoint is the collector address for the OTLP exporters.
	Endpoint string

	// Insecure disables TLS for the OTLP exporters.
	Insecure bool

	// Headers are sent with each OTLP export request.
	Headers map[string]string
}

// DefaultConfig returns a configuration with tracing export disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "gherkit",
		ServiceVersion: "unknown",
		Exporter:       ExporterNone,
	}
}

// Validate checks the exporter settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Exporter) {
	case "", ExporterNone, ExporterStdout:
		return nil
	case ExporterOTLPHTTP, ExporterOTLPGRPC:
		if c.Endpoint == "" {
			return &errors.ConfigError{
				Key:    "tracing.endpoint",
				Reason: "an endpoint is required for the " + c.Exporter + " exporter",
			}
		}
		return nil
	default:
		return &errors.ConfigError{
			Key:    "tracing.exporter",
			Reason: "unknown exporter " + c.Exporter + " (valid: none, stdout, otlp-http, otlp-grpc)",
		}
	}
}
