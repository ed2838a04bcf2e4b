package hcl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
)

// Ext is the extension of HCL sweep files.
const Ext = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL sweep file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes every top-level block a sweep file may contain.
type fileRoot struct {
	Solver   *solverBlock   `hcl:"solver,block"`
	Corpus   *corpusBlock   `hcl:"corpus,block"`
	Output   *outputBlock   `hcl:"output,block"`
	Dispatch *dispatchBlock `hcl:"dispatch,block"`
	Render   *renderBlock   `hcl:"render,block"`
	Ledger   *ledgerBlock   `hcl:"ledger,block"`
	Params   []*paramBlock  `hcl:"param,block"`
}

type solverBlock struct {
	Executable string         `hcl:"executable,optional"`
	Timeout    hcl.Expression `hcl:"timeout,optional"`
}

type corpusBlock struct {
	Root      string `hcl:"root,optional"`
	Extension string `hcl:"extension,optional"`
}

type outputBlock struct {
	Root string `hcl:"root"`
}

type dispatchBlock struct {
	Workers    int     `hcl:"workers,optional"`
	LaunchRate float64 `hcl:"launch_rate,optional"`
}

type renderBlock struct {
	Snapshots     bool   `hcl:"snapshots,optional"`
	LiveURL       string `hcl:"live_url,optional"`
	LiveNamespace string `hcl:"live_namespace,optional"`
}

type ledgerBlock struct {
	Path string `hcl:"path"`
}

type paramBlock struct {
	Name   string         `hcl:"name,label"`
	Values hcl.Expression `hcl:"values,optional"`
	Spec   string         `hcl:"spec,optional"`
}

// Load parses every .hcl file found in paths (files, or directories walked
// recursively) and merges them in order into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		part, err := l.translate(ctx, &root)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		model.Merge(part)
	}

	logger.Debug("HCL loading complete.", "files", len(files), "params", len(model.Params))
	return model, nil
}

// translate turns one decoded file into a partial model.
func (l *Loader) translate(ctx context.Context, root *fileRoot) (*config.Model, error) {
	m := &config.Model{}
	if b := root.Solver; b != nil {
		m.Solver.Executable = b.Executable
		if isExprDefined(ctx, b.Timeout, "timeout") {
			d, err := durationFromExpr(b.Timeout)
			if err != nil {
				return nil, fmt.Errorf("solver timeout: %w", err)
			}
			m.Solver.Timeout = d
		}
	}
	if b := root.Corpus; b != nil {
		m.Corpus = config.Corpus{Root: b.Root, Extension: b.Extension}
	}
	if b := root.Output; b != nil {
		m.Output.Root = b.Root
	}
	if b := root.Dispatch; b != nil {
		if b.Workers < 0 || b.LaunchRate < 0 {
			return nil, fmt.Errorf("dispatch settings must not be negative")
		}
		m.Dispatch = config.Dispatch{Workers: b.Workers, LaunchRate: b.LaunchRate}
	}
	if b := root.Render; b != nil {
		m.Render = config.Render{Snapshots: b.Snapshots, LiveURL: b.LiveURL, LiveNamespace: b.LiveNamespace}
	}
	if b := root.Ledger; b != nil {
		m.Ledger.Path = b.Path
	}

	for _, p := range root.Params {
		param := &config.Param{Name: p.Name, Spec: p.Spec}
		if isExprDefined(ctx, p.Values, "values") {
			values, err := candidatesFromExpr(p.Values)
			if err != nil {
				return nil, fmt.Errorf("param %q: %w", p.Name, err)
			}
			param.Values = values
		}
		m.Merge(&config.Model{Params: []*config.Param{param}})
	}
	return m, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Named files are taken as they are, whatever their extension.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			allFiles = append(allFiles, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == Ext {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
