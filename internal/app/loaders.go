package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/hcl"
	"github.com/specialistvlad/vrpbench/internal/yamlconfig"
)

// coreLoaders maps a sweep file extension to its loader. Directories are
// read with the HCL loader.
var coreLoaders = map[string]config.Loader{
	hcl.Ext: hcl.NewLoader(),
	".yaml": yamlconfig.NewLoader(),
	".yml":  yamlconfig.NewLoader(),
}

// loadModel reads every sweep file in paths with the loader for its
// extension and merges the results in order.
func loadModel(ctx context.Context, loaders map[string]config.Loader, paths []string) (*config.Model, error) {
	model := &config.Model{}
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			ext = hcl.Ext
		}
		loader, ok := loaders[ext]
		if !ok {
			return nil, fmt.Errorf("no loader for sweep file %s", p)
		}
		part, err := loader.Load(ctx, p)
		if err != nil {
			return nil, err
		}
		model.Merge(part)
	}
	return model, nil
}
