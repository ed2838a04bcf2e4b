package decoder

import (
	"bufio"
	"io"
	"strings"
)

// Kind classifies a block by its heading.
type Kind int

const (
	KindUnknown Kind = iota
	KindGraph
	KindRoutes
	KindFinalOutput
)

// FinalHeading is the exact heading of the terminal block.
const FinalHeading = "FINAL_OUTPUT"

func (k Kind) String() string {
	switch k {
	case KindGraph:
		return "graph"
	case KindRoutes:
		return "routes"
	case KindFinalOutput:
		return "final_output"
	default:
		return "unknown"
	}
}

// Classify maps a heading to its Kind. GRAPH and ROUTES match by prefix,
// FINAL_OUTPUT must match exactly.
func Classify(heading string) Kind {
	switch {
	case heading == FinalHeading:
		return KindFinalOutput
	case strings.HasPrefix(heading, "GRAPH"):
		return KindGraph
	case strings.HasPrefix(heading, "ROUTES"):
		return KindRoutes
	default:
		return KindUnknown
	}
}

// Block is one heading plus its content lines. Trailing is set on blocks the
// tokenizer emitted after a FINAL_OUTPUT block had already been consumed.
type Block struct {
	Heading  string
	Kind     Kind
	Content  []string
	Trailing bool
}

type state int

const (
	stateSeeking state = iota
	stateInBlock
	stateTerminal
)

// maxLineSize bounds a single capture line. Route lines on large instances
// easily exceed bufio's 64KiB default.
const maxLineSize = 16 * 1024 * 1024

// IsDelimiter reports whether line is a block delimiter: it starts with at
// least four dashes. Anything after them is ignored.
func IsDelimiter(line string) bool {
	return strings.HasPrefix(line, "----")
}

// normalizeHeading trims the heading and drops one trailing colon.
func normalizeHeading(line string) string {
	h := strings.TrimSpace(line)
	h = strings.TrimSuffix(h, ":")
	return strings.TrimSpace(h)
}

// Scan tokenizes r and calls fn for every block in order. Scanning stops at
// the first error returned by fn.
func Scan(r io.Reader, fn func(Block) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	st := stateSeeking
	terminal := false
	var cur *Block

	emit := func() error {
		if cur == nil {
			return nil
		}
		b := *cur
		cur = nil
		b.Trailing = terminal
		if b.Kind == KindFinalOutput {
			terminal = true
		}
		return fn(b)
	}

	for sc.Scan() {
		line := sc.Text()
		if IsDelimiter(line) {
			if err := emit(); err != nil {
				return err
			}
			if terminal {
				st = stateTerminal
			} else {
				st = stateSeeking
			}
			continue
		}

		switch st {
		case stateSeeking, stateTerminal:
			if strings.TrimSpace(line) == "" {
				continue
			}
			h := normalizeHeading(line)
			cur = &Block{Heading: h, Kind: Classify(h)}
			st = stateInBlock
		case stateInBlock:
			cur.Content = append(cur.Content, strings.TrimRight(line, " \t\r"))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return emit()
}

// Split tokenizes r into a slice of blocks.
func Split(r io.Reader) ([]Block, error) {
	var blocks []Block
	err := Scan(r, func(b Block) error {
		blocks = append(blocks, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
