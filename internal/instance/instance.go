// Package instance reads the geometry of TSPLIB-style CVRP instance files:
// node coordinates, demands, capacity and depot. Node ids in the file are
// one-based; the returned geometry is zero-based.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/vrpbench/internal/artifact"
)

var (
	// ErrNoCoordinates is returned when a file has no usable NODE_COORD_SECTION.
	ErrNoCoordinates = errors.New("instance has no node coordinates")
	// ErrNodeID is returned when a node id exceeds DIMENSION, or maxNodes
	// when the file has no DIMENSION header.
	ErrNodeID = errors.New("node id out of range")
)

// maxNodes bounds node ids in files without a DIMENSION header.
const maxNodes = 1_000_000

type section int

const (
	sectionNone section = iota
	sectionCoords
	sectionDemand
	sectionDepot
)

// Load opens and parses the instance at path.
func Load(path string) (*artifact.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing instance %s: %w", path, err)
	}
	return g, nil
}

// Parse reads an instance from r.
func Parse(r io.Reader) (*artifact.Geometry, error) {
	coords := make(map[int][2]float64)
	demands := make(map[int]float64)
	depot := -1
	maxID := 0
	dimension := 0
	g := &artifact.Geometry{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	cur := sectionNone
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "EOF" {
			break
		}
		if strings.HasSuffix(line, "_SECTION") {
			switch line {
			case "NODE_COORD_SECTION":
				cur = sectionCoords
			case "DEMAND_SECTION":
				cur = sectionDemand
			case "DEPOT_SECTION":
				cur = sectionDepot
			default:
				cur = sectionNone
			}
			continue
		}
		if key, value, ok := header(line); ok {
			cur = sectionNone
			switch key {
			case "NAME":
				g.Name = value
			case "DIMENSION":
				if n, err := strconv.Atoi(value); err == nil && n > 0 {
					dimension = n
				}
			case "CAPACITY":
				if c, err := strconv.ParseFloat(value, 64); err == nil {
					g.Capacity = c
				}
			}
			continue
		}

		fields := strings.Fields(line)
		switch cur {
		case sectionCoords:
			if len(fields) < 3 {
				continue
			}
			id, err1 := strconv.Atoi(fields[0])
			x, err2 := strconv.ParseFloat(fields[1], 64)
			y, err3 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil || err3 != nil || id < 1 {
				continue
			}
			coords[id] = [2]float64{x, y}
			if id > maxID {
				maxID = id
			}
		case sectionDemand:
			if len(fields) < 2 {
				continue
			}
			id, err1 := strconv.Atoi(fields[0])
			d, err2 := strconv.ParseFloat(fields[1], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			demands[id] = d
		case sectionDepot:
			id, err := strconv.Atoi(fields[0])
			if err != nil || id == -1 {
				cur = sectionNone
				continue
			}
			if depot < 0 {
				depot = id - 1
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, ErrNoCoordinates
	}
	limit := maxNodes
	if dimension > 0 {
		limit = dimension
	}
	if maxID > limit {
		return nil, fmt.Errorf("%w: node %d, limit %d", ErrNodeID, maxID, limit)
	}

	g.Coords = make([][2]float64, maxID)
	g.Demands = make([]float64, maxID)
	for id, xy := range coords {
		g.Coords[id-1] = xy
	}
	for id, d := range demands {
		if id >= 1 && id <= maxID {
			g.Demands[id-1] = d
		}
	}
	if depot < 0 || depot >= maxID {
		depot = 0
	}
	g.Depot = depot
	return g, nil
}

// header splits "KEY : value" specification lines. Section data lines never
// contain a colon, so the colon is what tells the two apart.
func header(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return strings.ToUpper(key), strings.TrimSpace(value), true
}
