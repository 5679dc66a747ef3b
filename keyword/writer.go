package keyword

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/mesh"
)

// WriteFile writes doc to filename
func WriteFile(filename string, doc *Document, u Units) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, doc, u)
}

// Write emits doc as an LS-DYNA keyword deck, converting SI values with u.
// Cards are written in document order.
func Write(w io.Writer, doc *Document, u Units) error {
	if err := u.Validate(); err != nil {
		return err
	}
	kw := &writer{w: bufio.NewWriter(w), u: u}
	kw.card("*KEYWORD")
	kw.card("*TITLE")
	kw.line(doc.Title)
	kw.nodes(doc.Nodes)
	written := make(map[int]bool)
	for _, p := range doc.Parts {
		if err := kw.part(p, written); err != nil {
			return err
		}
	}
	for _, s := range doc.NodeSets {
		kw.nodeSet(s)
	}
	for _, s := range doc.SegmentSets {
		if err := kw.segmentSet(s); err != nil {
			return err
		}
	}
	for _, c := range doc.Contacts {
		kw.contact(c)
	}
	if doc.Control != nil {
		kw.control(*doc.Control)
	}
	for _, c := range doc.Curves {
		kw.curve(c)
	}
	kw.card("*END")
	return kw.w.Flush()
}

// writer errors are sticky in the bufio.Writer and surface on Flush
type writer struct {
	w *bufio.Writer
	u Units
}

func (kw *writer) card(name string) { kw.line(name) }

func (kw *writer) line(fields ...string) {
	kw.w.WriteString(strings.Join(fields, ""))
	kw.w.WriteByte('\n')
}

func (kw *writer) nodes(nodes []mesh.Node) {
	kw.card("*NODE")
	kw.line("$#   nid               x               y               z")
	l := kw.u.Length
	for _, n := range nodes {
		fmt.Fprintf(kw.w, "%8d%16.6E%16.6E%16.6E\n", n.ID, n.X*l, n.Y*l, n.Z*l)
	}
}

func (kw *writer) part(p Part, written map[int]bool) error {
	if p.Section.Shell {
		kw.card("*SECTION_SHELL")
		kw.line("$#   secid    elform      shrf       nip")
		kw.line(i10(p.Section.ID), i10(ElFormShell), r10(1), i10(2))
		t := r10(p.Section.Thickness * kw.u.Length)
		kw.line("$#      t1        t2        t3        t4")
		kw.line(t, t, t, t)
	} else {
		kw.card("*SECTION_SOLID")
		kw.line("$#   secid    elform")
		elform := p.Section.ElForm
		if elform == 0 {
			elform = SolidElForm(p.Elements)
		}
		kw.line(i10(p.Section.ID), i10(elform))
	}

	if mat := p.Material; !written[mat.ID] {
		written[mat.ID] = true
		kw.card("*MAT_ELASTIC")
		kw.line("$#     mid        ro         e        pr")
		kw.line(i10(mat.ID), r10(mat.Density*kw.u.Density), r10(mat.Youngs*kw.u.Stress), r10(mat.Poisson))
	}

	kw.card("*PART")
	kw.line(p.Title)
	kw.line("$#     pid     secid       mid")
	kw.line(i10(p.ID), i10(p.Section.ID), i10(p.Material.ID))

	if p.Section.Shell {
		kw.card("*ELEMENT_SHELL")
		for _, e := range p.Elements {
			n, err := shellNodes(e)
			if err != nil {
				return err
			}
			kw.line(i8(e.ID), i8(p.ID), i8(n[0]), i8(n[1]), i8(n[2]), i8(n[3]))
		}
		return nil
	}
	kw.card("*ELEMENT_SOLID")
	for _, e := range p.Elements {
		n, err := solidNodes(e)
		if err != nil {
			return err
		}
		kw.line(i8(e.ID), i8(p.ID))
		fields := make([]string, 0, 10)
		for _, id := range n {
			fields = append(fields, i8(id))
		}
		fields = append(fields, i8(0), i8(0))
		kw.line(fields...)
	}
	return nil
}

// solidNodes expands the corners of e to the eight node LS-DYNA layout
func solidNodes(e mesh.Element) ([8]int, error) {
	var out [8]int
	c, err := mesh.CornerNodes(e)
	if err != nil {
		return out, err
	}
	if len(c) == 0 {
		return out, fmt.Errorf("%w: element %d has no nodes", mesh.ErrShortElement, e.ID)
	}
	var order []int
	switch e.Family.Linear() {
	case mesh.Tet:
		order = []int{0, 1, 2, 3, 3, 3, 3, 3}
	case mesh.Wedge:
		order = []int{0, 1, 2, 3, 4, 4, 5, 5}
	case mesh.Pyramid:
		order = []int{0, 1, 2, 3, 4, 4, 4, 4}
	default:
		order = []int{0, 1, 2, 3, 4, 5, 6, 7}
	}
	for i, k := range order {
		if k >= len(c) {
			k = len(c) - 1
		}
		out[i] = c[k]
	}
	return out, nil
}

func shellNodes(e mesh.Element) ([4]int, error) {
	var out [4]int
	c, err := mesh.CornerNodes(e)
	if err != nil {
		return out, err
	}
	if err = quad(c, &out); err != nil {
		return out, fmt.Errorf("element %d: %w", e.ID, err)
	}
	return out, nil
}

// quad fills a four node segment, repeating the third node of triangles
func quad(nodes []int, out *[4]int) error {
	if len(nodes) < 3 {
		return fmt.Errorf("%w: %d nodes", mesh.ErrShortElement, len(nodes))
	}
	if len(nodes) > 4 {
		return fmt.Errorf("%w: %d nodes", ErrSegmentNodes, len(nodes))
	}
	copy(out[:], nodes)
	if len(nodes) == 3 {
		out[3] = nodes[2]
	}
	return nil
}

func (kw *writer) nodeSet(s NodeSet) {
	kw.card("*SET_NODE_TITLE")
	kw.line(s.Title)
	kw.line("$#     sid")
	kw.line(i10(s.ID))
	row := make([]string, 0, 8)
	for _, id := range s.Nodes {
		row = append(row, i10(id))
		if len(row) == 8 {
			kw.line(row...)
			row = row[:0]
		}
	}
	if len(row) > 0 {
		kw.line(row...)
	}
}

func (kw *writer) segmentSet(s contact.SegmentSet) error {
	kw.card("*SET_SEGMENT_TITLE")
	kw.line(s.Title)
	kw.line("$#     sid")
	kw.line(i10(s.ID))
	var seg [4]int
	for _, f := range s.Faces {
		if err := quad(f.Nodes, &seg); err != nil {
			return fmt.Errorf("segment set %s, element %d: %w", s.Title, f.Element, err)
		}
		kw.line(i10(seg[0]), i10(seg[1]), i10(seg[2]), i10(seg[3]))
	}
	return nil
}

func (kw *writer) contact(c contact.Card) {
	kw.line("$ " + c.Title)
	kw.card(c.Kind.Keyword())
	kw.line("$#    ssid      msid     sstyp     mstyp")
	kw.line(i10(c.SlaveSet), i10(c.MasterSet), i10(0), i10(0))
	kw.line("$#      fs        fd        dc        vc       vdc    penchk        bt")
	kw.line(r10(c.Friction), r10(c.Friction), r10(0), r10(0), r10(0), i10(0), r10(0))
	kw.line("$#     sfs       sfm       sst       mst      sfst      sfmt       fsf       vsf")
	kw.line(r10(1), r10(1), r10(0), r10(0), r10(1), r10(1), r10(1), r10(1))
}

func (kw *writer) control(c Control) {
	kw.line("$")
	kw.card("*CONTROL_TERMINATION")
	kw.line("$#  endtim    endcyc     dtmin    endeng    endmas")
	kw.line(r10(c.EndTime), i10(0), r10(0), r10(0), r10(0))
}

func (kw *writer) curve(c Curve) {
	kw.line("$")
	if c.Title != "" {
		kw.card("*DEFINE_CURVE_TITLE")
		kw.line(c.Title)
	} else {
		kw.card("*DEFINE_CURVE")
	}
	kw.line("$#    lcid      sidr       sfa       sfo      offa      offo    dattyp     lcint")
	kw.line(i10(c.ID), i10(0), r10(1), r10(1), r10(0), r10(0), i10(0), i10(0))
	kw.line("$#                a1                  o1")
	for _, p := range c.Points {
		kw.line(fixed(p[0], curveWidth), fixed(p[1], curveWidth))
	}
}
