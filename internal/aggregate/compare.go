package aggregate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ComparisonFile is written to the output root by Compare.
const ComparisonFile = "cost_comparison.csv"

// Comparison lays minCost out as instances x combinations.
type Comparison struct {
	Combinations []string
	Instances    []string
	costs        map[string]map[string]string
}

// Cost returns the minCost text of instance under combination.
func (c *Comparison) Cost(instance, combination string) string {
	return c.costs[instance][combination]
}

// Best returns the combination with the lowest numeric cost for instance,
// or "" when no combination has a parseable cost. Ties go to the earlier
// combination.
func (c *Comparison) Best(instance string) string {
	best, bestVal := "", 0.0
	for _, combo := range c.Combinations {
		v, err := strconv.ParseFloat(c.costs[instance][combo], 64)
		if err != nil {
			continue
		}
		if best == "" || v < bestVal {
			best, bestVal = combo, v
		}
	}
	return best
}

// DiscoverCombinations lists the subdirectories of root that hold an
// accumulated table, sorted by name.
func DiscoverCombinations(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), TableFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Compare reads the accumulated table of each combination under root.
// Combinations whose table does not exist yet contribute an empty column.
func Compare(root string, combinations []string) (*Comparison, error) {
	c := &Comparison{
		Combinations: combinations,
		costs:        make(map[string]map[string]string),
	}
	for _, combo := range combinations {
		t, err := ReadTable(filepath.Join(root, combo, TableFile))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, row := range t.Rows {
			byCombo, ok := c.costs[row.Instance]
			if !ok {
				byCombo = make(map[string]string)
				c.costs[row.Instance] = byCombo
				c.Instances = append(c.Instances, row.Instance)
			}
			byCombo[combo] = row.MinCost
		}
	}
	sort.Strings(c.Instances)
	return c, nil
}

// Write stores the comparison as CSV: the instance, one column per
// combination, and the best combination.
func (c *Comparison) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating comparison: %w", err)
	}
	w := csv.NewWriter(f)

	header := append([]string{ColInstance}, c.Combinations...)
	header = append(header, "best")
	records := [][]string{header}
	for _, inst := range c.Instances {
		rec := []string{inst}
		for _, combo := range c.Combinations {
			rec = append(rec, c.Cost(inst, combo))
		}
		rec = append(rec, c.Best(inst))
		records = append(records, rec)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("writing comparison: %w", err)
	}
	return f.Close()
}
