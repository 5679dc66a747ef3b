package export

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/region"
)

// TargetSuffix names the region holding the faces matched by a Cap region.
// These regions take part in contacts only and get no node set.
const TargetSuffix = "_Target"

// PairDefinitions links the regions region.NamePairs built from pairs into
// contact definitions. PerPair gives one contact per pair, Merged a single
// contact and ByDirection one contact per Cap region, against the faces its
// pairs matched.
func PairDefinitions(pairs []geometry.FacePair, named []region.NamedRegion, mode region.NamingMode,
	ct contact.ContactType) []contact.Definition {
	if len(pairs) == 0 || len(named) == 0 {
		return nil
	}
	var defs []contact.Definition
	switch mode {
	case region.Merged:
		a, b := named[0], named[1]
		defs = append(defs, contact.Definition{Name: strings.TrimSuffix(a.Name, "_A"), Contact: a, Target: b, Type: ct})

	case region.ByDirection:
		// Cap regions follow the first appearance of each A direction
		dirs := lo.Uniq(lo.Map(pairs, func(p geometry.FacePair, _ int) geometry.Direction { return p.DirA }))
		groups := lo.GroupBy(pairs, func(p geometry.FacePair) geometry.Direction { return p.DirA })
		for i, d := range dirs {
			a := named[i]
			b := region.NamedRegion{
				Name:    a.Name + TargetSuffix,
				FaceIDs: lo.Uniq(lo.Map(groups[d], func(p geometry.FacePair, _ int) int { return p.B.ID })),
			}
			defs = append(defs, contact.Definition{Name: a.Name, Contact: a, Target: b, Type: ct})
		}

	default:
		for i := range pairs {
			defs = append(defs, contact.Definition{
				Name:    fmt.Sprintf("Pair_%03d", i+1),
				Contact: named[2*i],
				Target:  named[2*i+1],
				Type:    ct,
			})
		}
	}
	return defs
}
