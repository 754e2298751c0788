// Package publishers announces finished briefings to external sinks: HTTP
// webhooks and cloud queues (SQS, SNS, Pub/Sub).
package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Publisher types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one sink declared in a publishers file or in the main
// configuration.
type PublisherConfig struct {
	ID      string                `json:"id" yaml:"id" mapstructure:"id"`
	Type    string                `json:"type" yaml:"type" mapstructure:"type"`
	Enabled *bool                 `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Queue   *QueuePublisherConfig `json:"queue" yaml:"queue" mapstructure:"queue"`
	HTTP    *HTTPPublisherConfig  `json:"http" yaml:"http" mapstructure:"http"`
}

// QueuePublisherConfig selects a queue provider and carries its settings.
type QueuePublisherConfig struct {
	Provider string                 `json:"provider" yaml:"provider" mapstructure:"provider"`
	AWS      *AWSSQSPublisherConfig `json:"aws" yaml:"aws" mapstructure:"aws"`
	SNS      *AWSSNSPublisherConfig `json:"sns" yaml:"sns" mapstructure:"sns"`
	GCP      *GCPQueueConfig        `json:"gcp" yaml:"gcp" mapstructure:"gcp"`
}

// AWSSQSPublisherConfig targets one SQS queue.
type AWSSQSPublisherConfig struct {
	QueueURL       string `json:"uri" yaml:"uri" mapstructure:"uri"`
	AWSCredentials `yaml:",inline" mapstructure:",squash"`
}

// AWSSNSPublisherConfig targets one SNS topic.
type AWSSNSPublisherConfig struct {
	TopicARN       string `json:"topic_arn" yaml:"topic_arn" mapstructure:"topic_arn"`
	AWSCredentials `yaml:",inline" mapstructure:",squash"`
}

// GCPQueueConfig targets one Pub/Sub topic. Endpoint points the client at an
// emulator.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id" mapstructure:"project_id"`
	Topic           string `json:"topic" yaml:"topic" mapstructure:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file" mapstructure:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
}

// HTTPPublisherConfig is a webhook sink.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url" mapstructure:"url"`
	Method         string            `json:"method" yaml:"method" mapstructure:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers" mapstructure:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// ConfigRegistry holds validated publisher entries.
type ConfigRegistry struct {
	mu         sync.RWMutex
	publishers []PublisherConfig
	idx        map[string]PublisherConfig
}

// LoadRegistry reads publisher entries from a YAML or JSON file. ${VAR}
// references are expanded from the environment before decoding.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	file, err := decodeConfigFile([]byte(os.ExpandEnv(string(raw))), filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}
	return NewConfigRegistry(file.Publishers)
}

// NewConfigRegistry sanitizes and validates entries. IDs must be unique.
func NewConfigRegistry(entries []PublisherConfig) (*ConfigRegistry, error) {
	reg := &ConfigRegistry{
		publishers: make([]PublisherConfig, 0, len(entries)),
		idx:        make(map[string]PublisherConfig, len(entries)),
	}

	for i, entry := range entries {
		cfg := entry.sanitized()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.publishers = append(reg.publishers, cfg)
		reg.idx[cfg.ID] = cfg
	}
	return reg, nil
}

// decodeConfigFile picks the decoder by extension, or tries YAML then JSON.
func decodeConfigFile(data []byte, ext string) (configFile, error) {
	decoders := []struct {
		exts []string
		fn   func([]byte, any) error
	}{
		{exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{exts: []string{".json"}, fn: json.Unmarshal},
	}

	ext = strings.ToLower(strings.TrimSpace(ext))
	var lastErr error
	for _, d := range decoders {
		if ext != "" && !slices.Contains(d.exts, ext) {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			lastErr = err
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return configFile{}, fmt.Errorf("decode publishers file: %w", lastErr)
	}
	return configFile{}, fmt.Errorf("publishers file extension %q not recognized (expected YAML or JSON)", ext)
}

func trim(s string) string { return strings.TrimSpace(s) }

func (cfg PublisherConfig) sanitized() PublisherConfig {
	cfg.ID = trim(cfg.ID)
	cfg.Type = strings.ToLower(trim(cfg.Type))
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}

	if cfg.Queue != nil {
		q := *cfg.Queue
		q.Provider = strings.ToLower(trim(q.Provider))
		if q.AWS != nil {
			a := *q.AWS
			a.QueueURL = trim(a.QueueURL)
			a.AWSCredentials.sanitize()
			q.AWS = &a
		}
		if q.SNS != nil {
			s := *q.SNS
			s.TopicARN = trim(s.TopicARN)
			s.AWSCredentials.sanitize()
			q.SNS = &s
		}
		if q.GCP != nil {
			g := *q.GCP
			g.ProjectID = trim(g.ProjectID)
			g.Topic = trim(g.Topic)
			g.CredentialsFile = trim(g.CredentialsFile)
			g.Endpoint = trim(g.Endpoint)
			q.GCP = &g
		}
		cfg.Queue = &q
	}

	if cfg.HTTP != nil {
		h := *cfg.HTTP
		h.URL = trim(h.URL)
		h.Method = strings.ToUpper(trim(h.Method))
		if h.Method == "" {
			h.Method = httpDefaultMethod
		}
		h.Headers = sanitizeHeaders(h.Headers)
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &h
	}
	return cfg
}

// sanitizeHeaders drops headers with an empty name or value.
func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if k, v = trim(k), trim(v); k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for publisher %q", cfg.ID)
		}
		return cfg.Queue.validate(cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
		return nil
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}
}

func (q QueuePublisherConfig) validate(id string) error {
	switch q.Provider {
	case QueueProviderAWSSQS:
		if q.AWS == nil || q.AWS.QueueURL == "" {
			return fmt.Errorf("aws.uri is required for publisher %q", id)
		}
		return q.AWS.validate("aws", id)
	case QueueProviderAWSSNS:
		if q.SNS == nil || q.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for publisher %q", id)
		}
		return q.SNS.validate("sns", id)
	case QueueProviderGCP:
		if q.GCP == nil || q.GCP.ProjectID == "" || q.GCP.Topic == "" {
			return fmt.Errorf("gcp.project_id and gcp.topic are required for publisher %q", id)
		}
		return nil
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", q.Provider, id)
	}
}

// ByID returns the entry with the given id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[trim(id)]
	return cfg, ok
}

// All returns every entry in declaration order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PublisherConfig, len(r.publishers))
	copy(out, r.publishers)
	return out
}

// Enabled returns the entries that are switched on.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue reports the enabled flag, true when unset.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}
