package esmodel

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs        []string
	username     string
	password     string
	apiKey       string
	cloudID      string
	insecureTLS  bool
	disableRetry bool

	readiness time.Duration

	logger  *zap.Logger
	metrics bool
}

// WithAddrs sets the cluster node URLs.
func WithAddrs(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append(c.addrs, addrs...)
	})
}

// WithBasicAuth sets HTTP basic authentication credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithAPIKey sets a base64-encoded Elasticsearch API key.
// OpenSearch clients reject it.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithCloudID connects to an Elastic Cloud deployment. Elasticsearch only.
func WithCloudID(id string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cloudID = id
	})
}

// WithInsecureTLS skips certificate verification. OpenSearch only.
func WithInsecureTLS() Option {
	return optionFunc(func(c *clientConfig) {
		c.insecureTLS = true
	})
}

// WithoutRetry disables transport-level retries on node failure.
func WithoutRetry() Option {
	return optionFunc(func(c *clientConfig) {
		c.disableRetry = true
	})
}

// WithReadinessTimeout waits up to d for the cluster to answer before
// returning from the constructor. Zero (default) skips the check.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readiness = d
	})
}

// WithLogger enables structured logging of engine requests.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics records engine request counts and durations on the default
// Prometheus registerer.
func WithMetrics() Option {
	return optionFunc(func(c *clientConfig) {
		c.metrics = true
	})
}

func newClientConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	return cfg
}
