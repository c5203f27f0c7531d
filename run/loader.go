package run

import (
	"fmt"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/exporter"
	"github.com/relex/otlp-export/otlpjson"
)

// Loader loads configuration from file and prepares the export pipeline to be launched
//
// Loader should take care of everything derived from the config file, but not trigger
// anything automatically
type Loader struct {
	Config
	MetricFactory *promreg.MetricFactory
}

// NewLoaderFromConfigFile creates a Loader from the config file at the given path
func NewLoaderFromConfigFile(filepath string, metricPrefix string) (*Loader, error) {
	config, configErr := LoadConfigFile(filepath)
	if configErr != nil {
		return nil, configErr
	}
	return &Loader{
		Config:        *config,
		MetricFactory: promreg.NewMetricFactory(metricPrefix, nil, nil),
	}, nil
}

// NewLoaderFromConfigString creates a Loader from YAML contents, for tests and benchmarks
func NewLoaderFromConfigString(contents string, metricPrefix string) (*Loader, error) {
	config, configErr := ParseConfigString(contents)
	if configErr != nil {
		return nil, configErr
	}
	return &Loader{
		Config:        *config,
		MetricFactory: promreg.NewMetricFactory(metricPrefix, nil, nil),
	}, nil
}

// StartExporter builds the pipeline from the configuration and launches its worker
func (loader *Loader) StartExporter(parentLogger logger.Logger) (*exporter.Exporter, error) {
	sink, sinkErr := loader.Sink.Value.NewSink(parentLogger, loader.MetricFactory)
	if sinkErr != nil {
		return nil, fmt.Errorf("sink: %w", sinkErr)
	}

	exp := exporter.New(
		parentLogger,
		loader.Resource.BuildResource(),
		otlpjson.NewEncoder(loader.Scope.Name, loader.Scope.Version),
		sink,
		loader.Batch.ToArgs(),
		loader.MetricFactory,
	)
	exp.Launch()
	return exp, nil
}

// GetMetricQuerier exposes the metric registry for test verification
func (loader *Loader) GetMetricQuerier() promreg.MetricQuerier {
	return loader.MetricFactory
}
