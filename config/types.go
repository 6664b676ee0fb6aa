package config

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	// Headers uses the OTEL_EXPORTER_OTLP_HEADERS format: key=value,foo=bar.
	Headers     string  `toml:"Headers,omitempty"`
	Traces      bool    `toml:"Traces"`
	Metrics     bool    `toml:"Metrics"`
	SampleRatio float64 `toml:"SampleRatio"`
}

// Enabled reports whether any exporter is switched on.
func (t Telemetry) Enabled() bool {
	return t.Traces || t.Metrics
}
