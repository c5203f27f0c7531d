// Package cmd provides list of commands including self-benchmarks and tools
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "otlp-export batches structured log records into OTLP/JSON payloads and persists them to a sink", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("benchmark ...", "Benchmark the export pipeline with null or file sink", &benchCmd, benchCmd.run)
	config.AddCmdWithArgs("run ...", "Run the exporter with the sample log generator", &runCmd, runCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
