package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/specialistvlad/vrpbench/internal/artifact"
)

var costChart = template.Must(template.New("costs").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"/><title>{{.Instance}} cost</title><script src="https://cdn.plot.ly/plotly-latest.min.js"></script></head>
<body>
<div id="plot"></div>
<script>
var data = [{ x: {{.Steps}}, y: {{.Values}}, mode: 'lines+markers', name: 'Cost' }];
var layout = { title: 'Cost over steps', xaxis: { title: 'Step' }, yaxis: { title: 'Cost' } };
Plotly.newPlot('plot', data, layout);
</script>
</body>
</html>
`))

// Snapshot writes every scene to the run directory: <heading>.json for graph
// and route scenes, <instance>_costs.html for the cost chart. Files are
// staged in the scene's scratch directory when one is set.
type Snapshot struct{}

func (Snapshot) RenderGraph(_ context.Context, s artifact.GraphScene) error {
	return writeJSON(s.Dir, s.Scratch, fileName(s.Graph.Heading)+".json", graphPayload(s))
}

func (Snapshot) RenderRoutes(_ context.Context, s artifact.RouteScene) error {
	return writeJSON(s.Dir, s.Scratch, fileName(s.Plan.Heading)+".json", routesPayload(s))
}

func (Snapshot) RenderCosts(_ context.Context, s artifact.CostScene) error {
	var buf bytes.Buffer
	if err := costChart.Execute(&buf, costsPayload(s)); err != nil {
		return fmt.Errorf("executing cost chart template: %w", err)
	}
	return place(s.Dir, "", fileName(s.Instance)+"_costs.html", buf.Bytes())
}

func writeJSON(dir, scratch, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return place(dir, scratch, name, append(data, '\n'))
}

// place writes data into a temp file and renames it to dir/name.
func place(dir, scratch, name string, data []byte) error {
	stage := scratch
	if stage == "" {
		stage = dir
	}
	tmp, err := os.CreateTemp(stage, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("placing %s: %w", name, err)
	}
	return nil
}
