// Command hullstat computes convex hull shape metrics for neuronal
// reconstructions.
//
// Usage:
//
//	hullstat [flags] file.swc|dir ...
//	hullstat [flags] -script analysis.hull
//
// Every SWC file (or every .swc file of a directory) becomes one row of the
// output table, or two with -split. Scripts build trees and hulls with the
// builtins of package engine.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"cogentcore.org/core/base/errors"
	"github.com/chazu/arborhull/pkg/config"
	"github.com/chazu/arborhull/pkg/table"
	"github.com/chazu/arborhull/pkg/tree"
)

type flags struct {
	config  string
	split   bool
	points  string
	out     string
	script  string
	stl     string
	png     string
	meshes  string
	verbose bool
}

func parseFlags(args []string) (*flags, []string, error) {
	f := &flags{}
	fs := flag.NewFlagSet("hullstat", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "JSON options file")
	fs.BoolVar(&f.split, "split", false, "analyse axon and dendrites separately")
	fs.StringVar(&f.points, "points", "", "hull points: all, tips or branch points")
	fs.StringVar(&f.out, "out", "", "write the metrics table as CSV")
	fs.StringVar(&f.script, "script", "", "run an analysis script instead of reading SWC files")
	fs.StringVar(&f.stl, "stl", "", "write 3D hulls as STL")
	fs.StringVar(&f.png, "png", "", "write a snapshot of 2D hulls")
	fs.StringVar(&f.meshes, "meshes", "", "write hull meshes as JSON")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "hullstat:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	f, paths, err := parseFlags(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := config.Empty()
	if f.config != "" {
		if opts, err = config.LoadOptions(f.config); err != nil {
			return err
		}
	}
	if f.split {
		opts.SetSplitCompartments(true)
	}
	if f.points != "" {
		opts.SetHullPoints(f.points)
		if err := opts.Validate(); err != nil {
			return err
		}
	}

	app, err := NewApp(opts, logger)
	if err != nil {
		return err
	}

	if f.script != "" {
		return runScript(ctx, app, f)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no SWC files given")
	}

	trees, err := loadTrees(paths)
	if err != nil {
		return err
	}
	batch, err := app.Analyze(ctx, trees)
	if err != nil {
		return err
	}
	if err := batch.Report(ctx, os.Stdout); err != nil {
		return err
	}

	if f.out != "" {
		if err := saveTable(batch.Table, f.out); err != nil {
			return err
		}
	}
	// Snapshots are best effort: a batch may hold no hull of the wanted kind.
	if f.stl != "" {
		errors.Log(batch.SaveSTL(ctx, f.stl))
	}
	if f.png != "" {
		errors.Log(batch.SavePNG(ctx, f.png))
	}
	if f.meshes != "" {
		meshes, err := batch.Meshes(ctx)
		if err != nil {
			return err
		}
		errors.Log(writeJSON(f.meshes, meshes))
	}
	return nil
}

func runScript(ctx context.Context, app *App, f *flags) error {
	src, err := os.ReadFile(f.script)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	res := app.Evaluate(ctx, string(src))
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			if e.Line > 0 {
				fmt.Fprintf(os.Stderr, "%s:%d: %s\n", f.script, e.Line, e.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", f.script, e.Message)
			}
		}
		return fmt.Errorf("%s: %d error(s)", f.script, len(res.Errors))
	}

	if res.Value != "" {
		fmt.Println(res.Value)
	}
	if f.out != "" {
		if err := saveTable(res.Table, f.out); err != nil {
			return err
		}
	}
	if f.meshes != "" {
		errors.Log(writeJSON(f.meshes, res.Meshes))
	}
	return nil
}

func saveTable(t *table.Table, path string) error {
	if t == nil || t.IsEmpty() {
		slog.Warn("no rows to write", "path", path)
		return nil
	}
	return t.Save(path)
}

// loadTrees reads SWC files and directories of SWC files, in argument
// order.
func loadTrees(paths []string) ([]*tree.Tree, error) {
	var trees []*tree.Tree
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			ts, err := tree.ListFromDir(p)
			if err != nil {
				return nil, err
			}
			trees = append(trees, ts...)
			continue
		}
		t, err := tree.LoadSWC(p)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	for _, t := range trees {
		for _, v := range tree.Validate(t) {
			slog.Warn("reconstruction", "label", t.DisplayLabel(), "finding", v.Error())
		}
	}
	return trees, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), data, 0o644)
}
