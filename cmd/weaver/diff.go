package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"weaver/pkg/config"
	"weaver/pkg/resolver"
	"weaver/pkg/schemadiff"
)

func runDiff(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	basePath := fs.String("base", "", "base registry root")
	headPath := fs.String("head", "", "head registry root")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *basePath == "" || *headPath == "" {
		return fmt.Errorf("diff requires both -base and -head")
	}

	opts := resolver.OptionsFromConfig(cfg.Resolver)
	base, baseErrs, err := loadAndResolve(ctx, cfg.Loader, opts, *basePath)
	if err != nil {
		return fmt.Errorf("resolve base %s: %w", *basePath, err)
	}
	if baseErrs != nil {
		return fmt.Errorf("base registry %s failed to resolve cleanly: %s", *basePath, baseErrs.Error())
	}

	head, headErrs, err := loadAndResolve(ctx, cfg.Loader, opts, *headPath)
	if err != nil {
		return fmt.Errorf("resolve head %s: %w", *headPath, err)
	}
	if headErrs != nil {
		return fmt.Errorf("head registry %s failed to resolve cleanly: %s", *headPath, headErrs.Error())
	}

	changes := schemadiff.Diff(ctx, base, head)
	if changes.IsEmpty() {
		fmt.Println("no schema changes")
		return nil
	}
	return json.NewEncoder(os.Stdout).Encode(changes)
}
