package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/run"
)

type benchmarkCommandState struct {
	Config      string `help:"Configuration file path; empty uses a built-in null sink config"`
	Count       int    `help:"Number of log records to emit"`
	Concurrency int    `help:"Number of producer goroutines"`
}

var benchCmd = benchmarkCommandState{
	Config:      "",
	Count:       1000000,
	Concurrency: 4,
}

const benchmarkNullConfig = `
resource:
  serviceName: benchmark
batch:
  overflow: block
sink:
  type: null
`

func (cmd *benchmarkCommandState) run(_ []string) {
	defs.EnableTestMode()

	var loader *run.Loader
	var loaderErr error
	if cmd.Config != "" {
		loader, loaderErr = run.NewLoaderFromConfigFile(cmd.Config, "benchexport_")
	} else {
		loader, loaderErr = run.NewLoaderFromConfigString(benchmarkNullConfig, "benchexport_")
	}
	if loaderErr != nil {
		logger.Fatal(loaderErr)
	}

	exp, expErr := loader.StartExporter(logger.Root())
	if expErr != nil {
		logger.Fatal(expErr)
	}

	perProducer := cmd.Count / cmd.Concurrency
	startTime := time.Now()

	wg := &sync.WaitGroup{}
	for producer := 0; producer < cmd.Concurrency; producer++ {
		wg.Add(1)
		go func(producer int) {
			defer wg.Done()
			attributes := map[string]base.Value{
				"producer": base.IntValue(int64(producer)),
			}
			for sequence := 0; sequence < perProducer; sequence++ {
				if err := exp.Emit(base.SeverityInfo, "benchmark record", attributes); err != nil {
					logger.Errorf("producer %d: %s", producer, err.Error())
					return
				}
			}
		}(producer)
	}
	wg.Wait()

	if err := exp.Shutdown(defs.ExporterShutdownTimeout); err != nil {
		logger.Errorf("shutdown: %s", err.Error())
	}
	elapsed := time.Since(startTime)

	stats := exp.Stats()
	total := perProducer * cmd.Concurrency
	fmt.Printf("emitted %d records in %s (%.0f records/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("flushed=%d dropped=%d batches: ok=%d dropped=%d retries=%d\n",
		stats.FlushedRecords, stats.RecordsDropped, stats.FlushSuccesses, stats.BatchesDropped, stats.FlushRetries)
}
