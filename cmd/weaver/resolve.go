package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"weaver/pkg/config"
	"weaver/pkg/logger"
	"weaver/pkg/resolver"
	"weaver/pkg/view"
)

func runResolve(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	registryPath := fs.String("registry", cfg.Loader.DefaultRegistryPath, "registry root (local path, git:..., or archive:...)")
	asView := fs.Bool("view", false, "print the flattened template-facing view instead of a summary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	schema, verrs, err := loadAndResolve(ctx, cfg.Loader, resolver.OptionsFromConfig(cfg.Resolver), *registryPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", *registryPath, err)
	}
	if verrs != nil {
		for _, e := range verrs.ErrorMessages() {
			logger.Error("resolution error", "message", e)
		}
		return fmt.Errorf("resolution of %s produced %d error(s)", *registryPath, len(verrs.Errors))
	}

	if *asView {
		v, err := view.Flatten(schema)
		if err != nil {
			return fmt.Errorf("flatten resolved schema: %w", err)
		}
		return json.NewEncoder(os.Stdout).Encode(v)
	}

	attributeCount := 0
	for _, g := range schema.Registry.Groups() {
		attributeCount += len(g.Attributes)
	}
	fmt.Printf("registry %s resolved: %d groups, %d attribute references, %d catalog entries\n",
		schema.RegistryID, schema.Registry.Len(), attributeCount, schema.Catalog.Len())
	return nil
}
