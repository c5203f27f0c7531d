package cmd

import (
	"context"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/run"
	"github.com/relex/otlp-export/util"
)

type runCommandState struct {
	Config      string        `help:"Configuration file path"`
	MetricsAddr string        `name:"metricsaddr" help:"The listener address to expose Prometheus metrics and debug information"`
	Interval    time.Duration `help:"Pace of the sample log generator"`
	TestMode    bool          `name:"testmode" help:"Use test mode config: fast retry and short timeout"`
}

var runCmd = runCommandState{
	Config:      "config.yml",
	MetricsAddr: ":9340",
	Interval:    500 * time.Millisecond,
	TestMode:    false,
}

func (cmd *runCommandState) run(args []string) {
	if cmd.TestMode {
		defs.EnableTestMode()
	}

	msrv := util.LaunchMetricsListener(cmd.MetricsAddr)

	run.Run(cmd.Config, cmd.Interval)

	if err := msrv.Shutdown(context.Background()); err != nil {
		logger.Errorf("error shutting down metrics listener: %v", err)
	}
}
