package metrics

// Provider identifies a metrics exporter backend.
type Provider string

// Supported providers.
const (
	PrometheusProvider Provider = "prometheus"
	OTLPProvider       Provider = "otlp"
)

// Config holds meter provider configuration.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
}

// ProviderCfg configures one exporter backend.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// OptionFn mutates the metrics Config.
type OptionFn func(config Config) Config

// WithProviderConfig appends an exporter backend.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, provider)
		return config
	}
}

// WithServiceName sets the service name resource attribute.
func WithServiceName(name string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = name
		return config
	}
}

// PromServerConfig configures the Prometheus scrape server.
type PromServerConfig struct {
	port string
}

// PromOptionFn mutates the Prometheus server config.
type PromOptionFn func(config PromServerConfig) PromServerConfig

// WithPort sets the scrape server port.
func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
