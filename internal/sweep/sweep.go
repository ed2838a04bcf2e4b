package sweep

import (
	"errors"
	"fmt"
	"strings"
)

// NoArgsName is the canonical name of a combination with no non-empty selections.
const NoArgsName = "noargs"

var (
	// ErrNameCollision is returned when two distinct combinations map to the same directory name.
	ErrNameCollision = errors.New("canonical name collision")
	// ErrUnsafeName is returned when a canonical name cannot be used as a single path element.
	ErrUnsafeName = errors.New("canonical name is not filesystem-safe")
)

// ParseCandidates normalizes a raw candidate list. It accepts "{a,b,c}" or
// "a,b,c", trims every item, drops empty items and duplicates (keeping the
// first occurrence) and returns the single empty-string sentinel when nothing
// remains.
func ParseCandidates(raw string) []string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return normalize(strings.Split(s, ","))
}

func normalize(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// Parameter is one named sweep dimension.
type Parameter struct {
	Name       string
	Candidates []string
}

// Sweep is an ordered set of parameters. The zero value is not usable; call New.
type Sweep struct {
	params []Parameter
	index  map[string]int
}

// New creates an empty Sweep.
func New() *Sweep {
	return &Sweep{index: make(map[string]int)}
}

// Add parses raw with ParseCandidates and adds the result under name.
func (s *Sweep) Add(name, raw string) {
	s.AddValues(name, ParseCandidates(raw))
}

// AddValues adds already split candidate values under name. Adding a name that
// already exists extends its candidates; the combined list is normalized again.
func (s *Sweep) AddValues(name string, values []string) {
	name = strings.TrimSpace(name)
	if i, ok := s.index[name]; ok {
		merged := append(append([]string{}, s.params[i].Candidates...), values...)
		s.params[i].Candidates = normalize(merged)
		return
	}
	s.index[name] = len(s.params)
	s.params = append(s.params, Parameter{Name: name, Candidates: normalize(values)})
}

// Parameters returns a copy of the parameters in insertion order.
func (s *Sweep) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	for i, p := range s.params {
		out[i] = Parameter{Name: p.Name, Candidates: append([]string{}, p.Candidates...)}
	}
	return out
}

// Len returns the number of parameters.
func (s *Sweep) Len() int {
	return len(s.params)
}

// Count returns the number of combinations Combinations will produce.
func (s *Sweep) Count() int {
	total := 1
	for _, p := range s.params {
		total *= len(p.Candidates)
	}
	return total
}

// Combinations returns the Cartesian product of all candidates in parameter
// insertion order, rightmost parameter fastest-varying. A sweep without
// parameters yields one empty combination.
func (s *Sweep) Combinations() []Combination {
	total := s.Count()
	combos := make([]Combination, total)
	for i := range combos {
		combos[i].Selections = make([]Selection, len(s.params))
	}

	repeat := 1
	for dim := len(s.params) - 1; dim >= 0; dim-- {
		p := s.params[dim]
		cycle := len(p.Candidates)
		for i := 0; i < total; i++ {
			combos[i].Selections[dim] = Selection{Name: p.Name, Value: p.Candidates[(i/repeat)%cycle]}
		}
		repeat *= cycle
	}
	return combos
}

// Selection is the value chosen for one parameter.
type Selection struct {
	Name  string
	Value string
}

// Combination assigns one candidate to every parameter of a sweep.
type Combination struct {
	Selections []Selection
}

// Arguments returns name=value tokens for every non-empty selection in declaration order.
func (c Combination) Arguments() []string {
	args := make([]string, 0, len(c.Selections))
	for _, sel := range c.Selections {
		if sel.Value == "" {
			continue
		}
		args = append(args, sel.Name+"="+sel.Value)
	}
	return args
}

// CanonicalName returns the directory name of the combination.
func (c Combination) CanonicalName() string {
	pairs := make([]string, 0, len(c.Selections))
	for _, sel := range c.Selections {
		if sel.Value == "" {
			continue
		}
		pairs = append(pairs, sel.Name+"-"+sel.Value)
	}
	if len(pairs) == 0 {
		return NoArgsName
	}
	return strings.Join(pairs, "_")
}

// key identifies the selected values independent of naming.
func (c Combination) key() string {
	var b strings.Builder
	for _, sel := range c.Selections {
		fmt.Fprintf(&b, "%d:%s=%d:%s;", len(sel.Name), sel.Name, len(sel.Value), sel.Value)
	}
	return b.String()
}

// CheckNames validates that every combination has a filesystem-safe canonical
// name and that no two distinct combinations share one.
func CheckNames(combos []Combination) error {
	owners := make(map[string]string, len(combos))
	for _, c := range combos {
		name := c.CanonicalName()
		if !safeName(name) {
			return fmt.Errorf("%w: %q", ErrUnsafeName, name)
		}
		key := c.key()
		if prev, ok := owners[name]; ok && prev != key {
			return fmt.Errorf("%w: %q is produced by more than one combination", ErrNameCollision, name)
		}
		owners[name] = key
	}
	return nil
}

func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
