package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"weaver/pkg/config"
	"weaver/pkg/livecheck"
	"weaver/pkg/livecheck/advisor"
	"weaver/pkg/logger"
	"weaver/pkg/policy"
	"weaver/pkg/resolver"
)

func runCheck(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	registryPath := fs.String("registry", cfg.Loader.DefaultRegistryPath, "registry root to check samples against")
	samplesPath := fs.String("samples", "", "newline-delimited JSON sample file ('-' for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *samplesPath == "" {
		return fmt.Errorf("check requires -samples")
	}

	schema, verrs, err := loadAndResolve(ctx, cfg.Loader, resolver.OptionsFromConfig(cfg.Resolver), *registryPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", *registryPath, err)
	}
	if verrs != nil {
		return fmt.Errorf("registry %s failed to resolve cleanly: %s", *registryPath, verrs.Error())
	}

	in := os.Stdin
	if *samplesPath != "-" {
		f, err := os.Open(*samplesPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", *samplesPath, err)
		}
		defer f.Close()
		in = f
	}
	samples, err := decodeSamples(in)
	if err != nil {
		return fmt.Errorf("decode samples: %w", err)
	}

	engine := policy.NewEngine()
	if cfg.Policy.Enabled && cfg.LiveCheck.PolicyDir != "" {
		if err := engine.LoadPolicies(cfg.LiveCheck.PolicyDir); err != nil {
			return fmt.Errorf("load policies from %s: %w", cfg.LiveCheck.PolicyDir, err)
		}
	}

	chain := advisor.DefaultChain(engine, cfg.LiveCheck.StrictEnumVariant)
	pipeline := livecheck.NewPipeline(schema, chain, livecheck.Options{InactivityTimeout: cfg.LiveCheck.InactivityTimeout})

	sampleCh := make(chan livecheck.Sample, len(samples))
	for _, s := range samples {
		sampleCh <- s
	}
	close(sampleCh)

	findings, err := pipeline.Run(ctx, sampleCh)
	if err != nil {
		return fmt.Errorf("run live check: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	violations := 0
	for f := range findings {
		if f.Level == livecheck.LevelViolation {
			violations++
		}
		if err := enc.Encode(f); err != nil {
			logger.Error("failed to encode finding", "error", err)
		}
	}

	summary := pipeline.Stats().Finalize()
	logger.Info("live check complete",
		"samples", summary.TotalSamples,
		"findings", summary.TotalFindings,
		"violations", summary.ViolationCount,
		"improvements", summary.ImprovementCount,
		"information", summary.InformationCount,
		"coverage", summary.CoverageCount,
	)
	if violations > 0 {
		return fmt.Errorf("live check found %d violation(s)", violations)
	}
	return nil
}
