package decoder

import (
	"math"
	"strconv"
	"strings"
)

// ParseGraphLine parses "Node <u>: (<v>,<any>)(<v>,<any>)...". Only the
// first element of each group matters. A node with no groups is valid and
// yields no targets.
func ParseGraphLine(line string) (from int, to []int, ok bool) {
	head, rest, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found {
		return 0, nil, false
	}
	fields := strings.Fields(head)
	if len(fields) != 2 || fields[0] != "Node" {
		return 0, nil, false
	}
	from, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, nil, false
	}

	for {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			if strings.TrimSpace(rest) != "" {
				return 0, nil, false
			}
			break
		}
		if strings.TrimSpace(rest[:open]) != "" {
			return 0, nil, false
		}
		end := strings.IndexByte(rest[open:], ')')
		if end < 0 {
			return 0, nil, false
		}
		group := rest[open+1 : open+end]
		first, _, _ := strings.Cut(group, ",")
		v, err := strconv.Atoi(strings.TrimSpace(first))
		if err != nil {
			return 0, nil, false
		}
		to = append(to, v)
		rest = rest[open+end+1:]
	}
	return from, to, true
}

// ParseRouteLine parses "Route #<k>: <tokens>". Integer tokens are kept in
// order; anything else is dropped. A route with no integer tokens is
// rejected.
func ParseRouteLine(line string) (id int, nodes []int, ok bool) {
	head, rest, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found {
		return 0, nil, false
	}
	head = strings.TrimSpace(head)
	if !strings.HasPrefix(head, "Route") {
		return 0, nil, false
	}
	num := strings.TrimSpace(strings.TrimPrefix(head, "Route"))
	if !strings.HasPrefix(num, "#") {
		return 0, nil, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(num[1:]))
	if err != nil {
		return 0, nil, false
	}
	for _, tok := range strings.Fields(rest) {
		if n, err := strconv.Atoi(tok); err == nil {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return 0, nil, false
	}
	return id, nodes, true
}

// ParseCostLine parses "Cost <number>" and returns the value along with the
// token exactly as printed.
func ParseCostLine(line string) (value float64, text string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || strings.TrimSuffix(fields[0], ":") != "Cost" {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "", false
	}
	return v, fields[1], true
}
