// Command spdmgen reads a build-time configuration profile and emits a
// Go source file defining the corresponding spdm.Config literal. It is
// a dev-time convenience around the config contract spec.md §1 places
// out of the core's scope; nothing in spdm imports this package.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"hermannm.dev/devlog"

	"github.com/openspdm/spdmcore/cmd/spdmgen/internal/profile"
)

var level slog.LevelVar

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &level,
	})))
}

func main() {
	in := flag.String("in", "", "path to the YAML configuration profile")
	out := flag.String("out", "", "path to write the generated Go source file")
	pkg := flag.String("pkg", "config", "package name for the generated file")
	varName := flag.String("var", "Generated", "exported variable name for the generated spdm.Config literal")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		level.Set(slog.LevelDebug)
	}

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: spdmgen -in profile.yaml -out config_generated.go")
		os.Exit(2)
	}

	if err := run(*in, *out, *pkg, *varName); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(inPath, outPath, pkgName, varName string) error {
	slog.Debug("loading profile", "path", inPath)
	p, err := profile.Load(inPath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	slog.Debug("validating profile")
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}

	src := p.GenerateGo(pkgName, varName)
	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write generated file: %w", err)
	}
	slog.Info("generated config", "out", outPath, "slots", p.NumSlots)
	return nil
}
