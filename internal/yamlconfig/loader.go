// Package yamlconfig provides the YAML implementation of config.Loader.
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader reads YAML sweep files.
type Loader struct{}

// NewLoader creates a new YAML sweep file loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Solver struct {
		Executable string `yaml:"executable"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"solver"`
	Corpus struct {
		Root      string `yaml:"root"`
		Extension string `yaml:"extension"`
	} `yaml:"corpus"`
	Output struct {
		Root string `yaml:"root"`
	} `yaml:"output"`
	Dispatch struct {
		Workers    int     `yaml:"workers"`
		LaunchRate float64 `yaml:"launch_rate"`
	} `yaml:"dispatch"`
	Render struct {
		Snapshots     bool   `yaml:"snapshots"`
		LiveURL       string `yaml:"live_url"`
		LiveNamespace string `yaml:"live_namespace"`
	} `yaml:"render"`
	Ledger struct {
		Path string `yaml:"path"`
	} `yaml:"ledger"`
	Params []paramEntry `yaml:"params"`
}

type paramEntry struct {
	Name   string      `yaml:"name"`
	Values []yaml.Node `yaml:"values"`
	Spec   string      `yaml:"spec"`
}

// Load decodes every file in paths and merges them in order. Unknown keys
// are rejected.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := &config.Model{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		part, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
		}
		model.Merge(part)
		logger.Debug("YAML sweep file loaded.", "path", path, "params", len(part.Params))
	}
	return model, nil
}

func decode(data []byte) (*config.Model, error) {
	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	m := &config.Model{
		Solver:   config.Solver{Executable: root.Solver.Executable},
		Corpus:   config.Corpus{Root: root.Corpus.Root, Extension: root.Corpus.Extension},
		Output:   config.Output{Root: root.Output.Root},
		Dispatch: config.Dispatch{Workers: root.Dispatch.Workers, LaunchRate: root.Dispatch.LaunchRate},
		Render: config.Render{
			Snapshots:     root.Render.Snapshots,
			LiveURL:       root.Render.LiveURL,
			LiveNamespace: root.Render.LiveNamespace,
		},
		Ledger: config.Ledger{Path: root.Ledger.Path},
	}
	if m.Dispatch.Workers < 0 || m.Dispatch.LaunchRate < 0 {
		return nil, errors.New("dispatch settings must not be negative")
	}
	if root.Solver.Timeout != "" {
		d, err := time.ParseDuration(root.Solver.Timeout)
		if err != nil {
			return nil, fmt.Errorf("solver timeout: %w", err)
		}
		if d < 0 {
			return nil, errors.New("solver timeout must not be negative")
		}
		m.Solver.Timeout = d
	}

	for _, p := range root.Params {
		if p.Name == "" {
			return nil, errors.New("param without a name")
		}
		param := &config.Param{Name: p.Name, Spec: p.Spec}
		for _, n := range p.Values {
			if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
				return nil, fmt.Errorf("param %q: line %d: values must be scalars", p.Name, n.Line)
			}
			param.Values = append(param.Values, n.Value)
		}
		m.Merge(&config.Model{Params: []*config.Param{param}})
	}
	return m, nil
}
