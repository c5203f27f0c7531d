package run

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/base/bconfig"
	"github.com/relex/otlp-export/processor"
	"github.com/relex/otlp-export/sink"
	"github.com/relex/otlp-export/util"
	"gopkg.in/yaml.v3"
)

// Resource attribute keys filled from the dedicated resource config fields
const (
	resourceKeyServiceName    = "service.name"
	resourceKeyServiceVersion = "service.version"
	resourceKeyEnvironment    = "deployment.environment"
)

// Config defines the root of otlp-export config file
type Config struct {
	Anchors  AnchorsConfig            `yaml:"anchors"`
	Resource ResourceConfig           `yaml:"resource"`
	Scope    ScopeConfig              `yaml:"scope"`
	Batch    BatchConfig              `yaml:"batch"`
	Sink     bconfig.SinkConfigHolder `yaml:"sink"`
}

// AnchorsConfig defines the anchors section in config file
// The section is meant to provide anchors for other sections and doesn't need to be unmarshalled itself
type AnchorsConfig struct {
}

// ResourceConfig defines the resource section: the static attributes attached to every record
type ResourceConfig struct {
	ServiceName    string                `yaml:"serviceName"`
	ServiceVersion string                `yaml:"serviceVersion"`
	Environment    string                `yaml:"environment"`
	Attributes     map[string]base.Value `yaml:"attributes"` // free-form additional attributes
}

// ScopeConfig defines the scope section: the instrumentation scope stamped on encoded batches
type ScopeConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// BatchConfig defines the batch section: buffering, flush triggers and retry tuning.
// Unset values take the defaults in defs.
type BatchConfig struct {
	QueueCapacity     int                      `yaml:"queueCapacity"`
	MaxRecords        int                      `yaml:"maxRecords"`
	MaxBytes          datasize.ByteSize        `yaml:"maxBytes"`
	MaxAge            time.Duration            `yaml:"maxAge"`
	Overflow          processor.OverflowPolicy `yaml:"overflow"`
	MaxRetries        int                      `yaml:"maxRetries"`
	RetryInitialDelay time.Duration            `yaml:"retryInitialDelay"`
	RetryMaxDelay     time.Duration            `yaml:"retryMaxDelay"`
}

func init() {
	sink.Register()
}

// LoadConfigFile loads config from the path and verifies all configurations
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.VerifyConfig(); err != nil {
		return nil, err
	}
	return cref, nil
}

// ParseConfigString loads config from a YAML string and verifies all configurations
func ParseConfigString(contents string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlString(contents, cref); err != nil {
		return nil, err
	}
	if err := cref.VerifyConfig(); err != nil {
		return nil, err
	}
	return cref, nil
}

// VerifyConfig verifies the whole configuration tree
func (cfg *Config) VerifyConfig() error {
	if err := cfg.Resource.VerifyConfig(); err != nil {
		return fmt.Errorf("resource: %w", err)
	}
	if err := cfg.Batch.VerifyConfig(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if cfg.Sink.Value == nil {
		return fmt.Errorf("sink: undefined")
	}
	if err := cfg.Sink.Value.VerifyConfig(); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	return nil
}

// VerifyConfig verifies the resource section
func (rcfg *ResourceConfig) VerifyConfig() error {
	if len(rcfg.ServiceName) == 0 {
		return fmt.Errorf(".serviceName is unspecified")
	}
	for _, reserved := range []string{resourceKeyServiceName, resourceKeyServiceVersion, resourceKeyEnvironment} {
		if _, found := rcfg.Attributes[reserved]; found {
			return fmt.Errorf(".attributes: '%s' must be set by its dedicated field", reserved)
		}
	}
	return nil
}

// BuildResource creates the shared immutable Resource from this section
func (rcfg *ResourceConfig) BuildResource() *base.Resource {
	attributes := make(map[string]base.Value, len(rcfg.Attributes)+3)
	for key, value := range rcfg.Attributes {
		attributes[key] = value
	}
	attributes[resourceKeyServiceName] = base.StringValue(rcfg.ServiceName)
	if len(rcfg.ServiceVersion) > 0 {
		attributes[resourceKeyServiceVersion] = base.StringValue(rcfg.ServiceVersion)
	}
	if len(rcfg.Environment) > 0 {
		attributes[resourceKeyEnvironment] = base.StringValue(rcfg.Environment)
	}
	return base.NewResource(attributes)
}

// VerifyConfig verifies the batch section
func (bcfg *BatchConfig) VerifyConfig() error {
	if bcfg.QueueCapacity < 0 || bcfg.MaxRecords < 0 || bcfg.MaxRetries < 0 {
		return fmt.Errorf("values must not be negative")
	}
	if bcfg.MaxAge < 0 || bcfg.RetryInitialDelay < 0 || bcfg.RetryMaxDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if bcfg.MaxRecords > 0 && bcfg.QueueCapacity > 0 && bcfg.MaxRecords > bcfg.QueueCapacity {
		return fmt.Errorf(".maxRecords must not exceed .queueCapacity")
	}
	if err := processor.VerifyOverflowPolicy(bcfg.Overflow); err != nil {
		return fmt.Errorf(".overflow: %w", err)
	}
	return nil
}

// ToArgs converts the batch section to processor tuning parameters
func (bcfg *BatchConfig) ToArgs() processor.Args {
	return processor.Args{
		QueueCapacity:     bcfg.QueueCapacity,
		MaxBatchRecords:   bcfg.MaxRecords,
		MaxBatchBytes:     int(bcfg.MaxBytes),
		MaxBatchAge:       bcfg.MaxAge,
		OverflowPolicy:    bcfg.Overflow,
		MaxRetries:        bcfg.MaxRetries,
		RetryInitialDelay: bcfg.RetryInitialDelay,
		RetryMaxDelay:     bcfg.RetryMaxDelay,
	}
}

// MarshalYAML provides custom marshalling to export readable document. The result is not reversible.
func (holder AnchorsConfig) MarshalYAML() (interface{}, error) {
	return []string(nil), nil
}

// UnmarshalYAML provides custom unmarshalling for the implementations of Config
func (holder *AnchorsConfig) UnmarshalYAML(value *yaml.Node) error {
	return nil
}
