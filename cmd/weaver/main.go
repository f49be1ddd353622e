// Command weaver is the CLI entry point for the semantic-convention
// registry toolchain: resolving a registry, diffing two resolved schemas,
// and running the live-check pipeline over a sample file. It is a thin
// smoke harness over pkg/loader, pkg/resolver, pkg/schemadiff,
// pkg/livecheck and pkg/policy — wiring them together the way the
// teacher's service cmd/main.go files wire config, logging, and telemetry
// around their domain packages.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"weaver/pkg/audit"
	"weaver/pkg/config"
	"weaver/pkg/logger"
	"weaver/pkg/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	auditLogger, err := audit.New(&audit.Config{
		Enabled:     cfg.Audit.Enabled,
		Backend:     cfg.Audit.Backend,
		FilePath:    cfg.Audit.FilePath,
		BufferSize:  cfg.Audit.BufferSize,
		FlushPeriod: cfg.Audit.FlushPeriod,
	})
	if err != nil {
		logger.Warn("failed to init audit logger, falling back to noop", "error", err)
		auditLogger = &audit.NoopLogger{}
	}
	audit.SetGlobal(auditLogger)
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logger.Warn("failed to close audit logger", "error", err)
		}
	}()

	cmd := os.Args[1]
	args := os.Args[2:]

	start := time.Now()
	var cmdErr error
	switch cmd {
	case "resolve":
		cmdErr = runResolve(ctx, cfg, args)
	case "diff":
		cmdErr = runDiff(ctx, cfg, args)
	case "check":
		cmdErr = runCheck(ctx, cfg, args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	outcome := audit.OutcomeSuccess
	entryBuilder := audit.NewEntry().
		Service(cfg.App.Name).
		Method(cmd).
		Action(commandAction(cmd)).
		Duration(time.Since(start))
	if cmdErr != nil {
		outcome = audit.OutcomeFailure
		entryBuilder = entryBuilder.Error("", cmdErr.Error())
	}
	if err := audit.Log(ctx, entryBuilder.Outcome(outcome).Build()); err != nil {
		logger.Warn("failed to write audit entry", "error", err)
	}

	if cmdErr != nil {
		logger.Error(cmd+" failed", "error", cmdErr)
		os.Exit(1)
	}
}

// commandAction maps a cmd/weaver subcommand name onto the audit action it
// performs, mirroring the one-action-per-call-site pattern the teacher's
// service handlers use when emitting audit entries.
func commandAction(cmd string) audit.Action {
	switch cmd {
	case "resolve":
		return audit.ActionResolve
	case "diff":
		return audit.ActionDiff
	case "check":
		return audit.ActionLiveCheck
	default:
		return audit.Action(cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `weaver: semantic-convention registry toolchain

Usage:
  weaver resolve -registry <path> [-view]
  weaver diff -base <path> -head <path>
  weaver check -registry <path> -samples <path|->

Flags are per-subcommand; run "weaver <command> -h" for details.`)
}
