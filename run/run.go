// Package run loads configuration and runs the export pipeline with the sample generator
package run

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/otlp-export/defs"
)

// Run runs the pipeline and sample generator until stopped by signals
//
// SIGINT and SIGTERM shut the pipeline down with a final drain; SIGHUP forces a rotation of
// the sink destination, cooperating with external log rotation.
func Run(configFile string, generateInterval time.Duration) {
	loader, loaderErr := NewLoaderFromConfigFile(configFile, "otlpexport_")
	if loaderErr != nil {
		logger.Fatal(loaderErr)
	}

	exp, expErr := loader.StartExporter(logger.Root())
	if expErr != nil {
		logger.Fatal(expErr)
	}

	stopRequest := channels.NewSignalAwaitable()
	gen := launchGenerator(exp, generateInterval, stopRequest)

	runLogger := logger.WithField(defs.LabelComponent, "Launcher")

	// wait for shutdown signal, rotating on SIGHUP
	{
		sigChan := make(chan os.Signal, 10)
		signal.Notify(sigChan, syscall.SIGINT)
		signal.Notify(sigChan, syscall.SIGTERM)
		signal.Notify(sigChan, syscall.SIGHUP)
		for {
			s := <-sigChan
			if s == syscall.SIGHUP {
				runLogger.Infof("received %s, rotating sink", s)
				if err := exp.Rotate(); err != nil {
					runLogger.Errorf("failed to rotate sink: %s", err.Error())
				}
				continue
			}
			runLogger.Infof("received %s, shutting down", s)
			break
		}
	}

	stopRequest.Signal()
	gen.Stopped().WaitForever()

	if err := exp.Shutdown(defs.ExporterShutdownTimeout); err != nil {
		runLogger.Errorf("shutdown with data loss: %s", err.Error())
	}

	stats := exp.Stats()
	runLogger.Infof("clean exit: flushed=%d dropped=%d", stats.FlushedRecords, stats.RecordsDropped)
}
