package region

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/notargets/dynaprep/geometry"
)

// NamingMode selects how detected pairs become regions
type NamingMode int

const (
	// PerPair gives each pair its own FaceA_NNN / FaceB_NNN regions
	PerPair NamingMode = iota
	// Merged collects every A face in <prefix>_A and every B face in <prefix>_B
	Merged
	// ByDirection groups the A faces by direction into Cap_* regions
	ByDirection
)

const DefaultMergedPrefix = "Contact"

func ParseNamingMode(s string) (NamingMode, error) {
	switch strings.ToLower(s) {
	case "", "per-pair", "perpair":
		return PerPair, nil
	case "merged":
		return Merged, nil
	case "direction", "by-direction":
		return ByDirection, nil
	}
	return 0, fmt.Errorf("unknown naming mode %q", s)
}

type NamingOptions struct {
	Mode     NamingMode
	Prefix   string   // Merged mode prefix, DefaultMergedPrefix when empty
	FirstID  int      // Id of the first region created, 1 when zero
	Existing []string // Names already taken, consulted by ByDirection
}

// NextCounter returns the next free three digit counter of base_NNN among
// existing names
func NextCounter(existing []string, base string) int {
	prefix := base + "_"
	next := 1
	for _, name := range existing {
		suffix, ok := strings.CutPrefix(name, prefix)
		if !ok || len(suffix) != 3 || strings.IndexFunc(suffix, notDigit) >= 0 {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

// NamePairs turns detected pairs into named regions
func NamePairs(pairs []geometry.FacePair, opts NamingOptions) []NamedRegion {
	id := opts.FirstID
	if id <= 0 {
		id = 1
	}
	var out []NamedRegion
	add := func(name string, faces []int) {
		out = append(out, NamedRegion{ID: id, Name: name, FaceIDs: faces})
		id++
	}

	switch opts.Mode {
	case Merged:
		prefix := opts.Prefix
		if prefix == "" {
			prefix = DefaultMergedPrefix
		}
		if len(pairs) == 0 {
			return nil
		}
		add(prefix+"_A", lo.Uniq(lo.Map(pairs, func(p geometry.FacePair, _ int) int { return p.A.ID })))
		add(prefix+"_B", lo.Uniq(lo.Map(pairs, func(p geometry.FacePair, _ int) int { return p.B.ID })))

	case ByDirection:
		groups := lo.GroupBy(pairs, func(p geometry.FacePair) geometry.Direction { return p.DirA })
		order := lo.Uniq(lo.Map(pairs, func(p geometry.FacePair, _ int) geometry.Direction { return p.DirA }))
		taken := append([]string{}, opts.Existing...)
		for _, dir := range order {
			base := dir.SemanticName()
			name := fmt.Sprintf("%s_%03d", base, NextCounter(taken, base))
			taken = append(taken, name)
			add(name, lo.Uniq(lo.Map(groups[dir], func(p geometry.FacePair, _ int) int { return p.A.ID })))
		}

	default:
		for i, p := range pairs {
			add(fmt.Sprintf("FaceA_%03d", i+1), []int{p.A.ID})
			add(fmt.Sprintf("FaceB_%03d", i+1), []int{p.B.ID})
		}
	}
	return out
}
