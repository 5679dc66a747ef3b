package keyword

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/notargets/dynaprep/mesh"
)

// DeckElement is an element as it appears in the deck, with padded node
// lists kept as written
type DeckElement struct {
	ID, Part int
	Shell    bool
	Nodes    []int
}

type DeckSegmentSet struct {
	ID       int
	Title    string
	Segments [][4]int
}

// Deck is the subset of a keyword file understood by Read. Values are in
// the units of the file.
type Deck struct {
	Title       string
	Nodes       []mesh.Node
	Elements    []DeckElement
	NodeSets    []NodeSet
	SegmentSets []DeckSegmentSet
	// Keywords counts every card seen, including the ones not parsed
	Keywords map[string]int
}

func ReadFile(filename string) (*Deck, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

type deckParser struct {
	deck    *Deck
	keyword string
	row     int // Data lines seen since the keyword
	pending *DeckElement
}

// Read parses *TITLE, *NODE, *ELEMENT_SOLID, *ELEMENT_SHELL,
// *SET_NODE_TITLE and *SET_SEGMENT_TITLE by fixed column offsets
func Read(r io.Reader) (*Deck, error) {
	p := &deckParser{deck: &Deck{Keywords: make(map[string]int)}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "$") || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "*") {
			p.keyword = strings.ToUpper(strings.TrimSpace(line))
			p.row = 0
			p.pending = nil
			p.deck.Keywords[p.keyword]++
			continue
		}
		if err := p.data(line); err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", lineNo, p.keyword, err)
		}
		p.row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.deck, nil
}

func (p *deckParser) data(line string) error {
	d := p.deck
	switch p.keyword {
	case "*TITLE":
		if p.row == 0 {
			d.Title = strings.TrimSpace(line)
		}
	case "*NODE":
		return p.node(line)
	case "*ELEMENT_SOLID":
		return p.solid(line)
	case "*ELEMENT_SHELL":
		ids, err := ints(line, 6, 8)
		if err != nil {
			return err
		}
		d.Elements = append(d.Elements, DeckElement{ID: ids[0], Part: ids[1], Shell: true, Nodes: ids[2:]})
	case "*SET_NODE_TITLE":
		return p.nodeSet(line)
	case "*SET_SEGMENT_TITLE":
		return p.segmentSet(line)
	}
	return nil
}

func (p *deckParser) node(line string) error {
	id, err := intField(line, 0, 8)
	if err != nil {
		return err
	}
	n := mesh.Node{ID: id}
	for i, dst := range []*float64{&n.X, &n.Y, &n.Z} {
		if *dst, err = floatField(line, 8+16*i, 16); err != nil {
			return err
		}
	}
	p.deck.Nodes = append(p.deck.Nodes, n)
	return nil
}

func (p *deckParser) solid(line string) error {
	if p.pending == nil {
		ids, err := ints(line, 2, 8)
		if err != nil {
			return err
		}
		p.pending = &DeckElement{ID: ids[0], Part: ids[1]}
		return nil
	}
	ids, err := ints(line, 10, 8)
	if err != nil {
		return err
	}
	p.pending.Nodes = ids[:8]
	p.deck.Elements = append(p.deck.Elements, *p.pending)
	p.pending = nil
	return nil
}

func (p *deckParser) nodeSet(line string) error {
	d := p.deck
	if p.row == 0 {
		d.NodeSets = append(d.NodeSets, NodeSet{Title: strings.TrimSpace(line)})
		return nil
	}
	s := &d.NodeSets[len(d.NodeSets)-1]
	ids, err := ints(line, 8, 10)
	if err != nil {
		return err
	}
	if p.row == 1 {
		s.ID = ids[0]
		return nil
	}
	for _, id := range ids {
		if id != 0 {
			s.Nodes = append(s.Nodes, id)
		}
	}
	return nil
}

func (p *deckParser) segmentSet(line string) error {
	d := p.deck
	if p.row == 0 {
		d.SegmentSets = append(d.SegmentSets, DeckSegmentSet{Title: strings.TrimSpace(line)})
		return nil
	}
	s := &d.SegmentSets[len(d.SegmentSets)-1]
	ids, err := ints(line, 4, 10)
	if err != nil {
		return err
	}
	if p.row == 1 {
		s.ID = ids[0]
		return nil
	}
	s.Segments = append(s.Segments, [4]int{ids[0], ids[1], ids[2], ids[3]})
	return nil
}

// ints reads n integer columns of the given width, blank columns as zero
func ints(line string, n, width int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		v, err := intField(line, i*width, width)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// NodeSet finds a node set by title
func (d *Deck) NodeSet(title string) (NodeSet, bool) {
	for _, s := range d.NodeSets {
		if s.Title == title {
			return s, true
		}
	}
	return NodeSet{}, false
}

// PrintSummary prints the card counts and set sizes of the deck
func (d *Deck) PrintSummary() {
	fmt.Printf("Deck: %s\n", d.Title)
	fmt.Printf("  Nodes: %d\n", len(d.Nodes))
	fmt.Printf("  Elements: %d\n", len(d.Elements))
	names := lo.Keys(d.Keywords)
	sort.Strings(names)
	fmt.Printf("  Cards:\n")
	for _, k := range names {
		fmt.Printf("    %-40s %d\n", k, d.Keywords[k])
	}
	for _, s := range d.NodeSets {
		fmt.Printf("  Node set %d %s: %d nodes\n", s.ID, s.Title, len(s.Nodes))
	}
	for _, s := range d.SegmentSets {
		fmt.Printf("  Segment set %d %s: %d segments\n", s.ID, s.Title, len(s.Segments))
	}
}
