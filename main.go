package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/quadsphere/pkg/kernel/sdfx"
	"github.com/chazu/quadsphere/pkg/sphere"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "quadsphere:", err)
		}
		os.Exit(1)
	}
}

// run is main without the process exit, so tests can drive the CLI.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("quadsphere", flag.ContinueOnError)
	fs.SetOutput(stderr)
	script := fs.String("script", "", "scene script to evaluate (required)")
	out := fs.String("out", "", "write all meshes to this binary STL file")
	atlasOut := fs.String("atlas", "", "write a PNG of the UV layout to this file")
	atlasSize := fs.Int("atlas-size", 1024, "atlas image width and height in pixels")
	refOut := fs.String("reference", "", "write the marching-cubes reference spheres to this binary STL file")
	refCells := fs.Int("reference-cells", 64, "marching cubes resolution of the reference meshes")
	perFace := fs.Bool("faces", false, "emit one mesh per cube face")
	verbose := fs.Bool("v", false, "log build details to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *script == "" {
		fs.Usage()
		return errors.New("-script is required")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	sphere.SetLogger(logger)
	defer sphere.SetLogger(nil)

	source, err := os.ReadFile(*script)
	if err != nil {
		return err
	}

	app := NewApp()
	app.log = logger
	app.PerFace = *perFace
	if *refOut != "" {
		app.kernel = sdfx.New().WithCells(*refCells)
		app.ReferenceMeshes = true
	}

	result := app.Evaluate(string(source))
	for _, w := range result.Warnings {
		logger.Warn(w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "%s:%d: %s\n", *script, e.Line, e.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", *script, e.Message)
			}
		}
		return fmt.Errorf("%d error(s) in %s", len(result.Errors), *script)
	}

	for _, st := range result.Stats {
		fmt.Fprintf(stdout, "sphere %d: %d leaves, %d vertices (%d welded), %d triangles",
			st.Index, st.Leaves, st.Vertices, st.Welded, st.Triangles)
		if st.HasReference {
			fmt.Fprintf(stdout, ", deviation max %.3g mean %.3g", st.MaxDeviation, st.MeanDeviation)
		}
		fmt.Fprintln(stdout)
	}

	if *atlasOut != "" {
		if err := app.Atlas(result, *atlasOut, *atlasSize); err != nil {
			return err
		}
	}
	if *refOut != "" {
		if err := app.ExportReference(result, *refOut); err != nil {
			return err
		}
	}
	if *out == "" {
		return nil
	}
	return app.Export(result, *out)
}
