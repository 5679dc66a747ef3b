package export

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/notargets/dynaprep/InputParameters"
	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/keyword"
	"github.com/notargets/dynaprep/mesh/readers"
	"github.com/notargets/dynaprep/region"
	"github.com/notargets/dynaprep/utils"
)

// FromJob reads the mesh and body files of a job and builds the export
// input, running contact detection when the job asks for it
func FromJob(job *InputParameters.Job, log *utils.RunLog) (Input, error) {
	var in Input
	if err := job.Validate(); err != nil {
		return in, err
	}
	units, err := keyword.ParseUnits(job.Units)
	if err != nil {
		return in, err
	}
	m, err := readers.ReadMeshFile(job.Mesh)
	if err != nil {
		return in, fmt.Errorf("reading mesh: %w", err)
	}
	in = Input{
		Title:            job.Title,
		Source:           region.MeshSource{M: m},
		Bodies:           make(map[int]BodyOptions, len(job.Parts)),
		DefaultThickness: job.Thickness,
		Units:            units,
		PlaneTolerance:   job.PlaneTolerance,
		Log:              log,
	}

	var model *geometry.Model
	if job.Bodies != "" {
		if model, err = geometry.LoadBodies(job.Bodies); err != nil {
			return in, fmt.Errorf("reading bodies: %w", err)
		}
		in.Faces = model
	}

	for _, p := range job.Parts {
		opts, err := bodyOptions(p)
		if err != nil {
			return in, err
		}
		in.Bodies[p.Body] = opts
	}

	for _, r := range job.Regions {
		in.Regions = append(in.Regions, region.NamedRegion{ID: r.ID, Name: r.Name, FaceIDs: r.Faces})
	}
	byName := lo.KeyBy(in.Regions, func(r region.NamedRegion) string { return r.Name })
	for _, c := range job.Contacts {
		ct, err := contactType(c.Kind, c.Friction)
		if err != nil {
			return in, err
		}
		in.Contacts = append(in.Contacts, contact.Definition{
			Name: c.Name, Contact: byName[c.Contact], Target: byName[c.Target], Type: ct,
		})
	}

	if job.Detect != nil {
		if err = in.detect(job.Detect, model, log); err != nil {
			return in, err
		}
	}

	if job.EndTime > 0 {
		in.Control = &keyword.Control{EndTime: job.EndTime}
	}
	for _, c := range job.Curves {
		in.Curves = append(in.Curves, keyword.Curve{ID: c.ID, Title: c.Title, Points: c.Points})
	}
	return in, nil
}

func bodyOptions(p InputParameters.PartParameters) (BodyOptions, error) {
	mat := keyword.DefaultMaterial()
	if p.Material != "" {
		var err error
		if mat, err = keyword.Preset(p.Material); err != nil {
			return BodyOptions{}, err
		}
	}
	if p.Density > 0 {
		mat.Density = p.Density
	}
	if p.Youngs > 0 {
		mat.Youngs = p.Youngs
	}
	if p.Poisson > 0 {
		mat.Poisson = p.Poisson
	}
	return BodyOptions{Name: p.Name, Material: mat, Thickness: p.Thickness}, nil
}

func contactType(kind string, friction float64) (contact.ContactType, error) {
	ct := contact.ContactType{Kind: contact.Tied, Friction: friction}
	if kind == "" {
		return ct, nil
	}
	var err error
	ct.Kind, err = contact.ParseKind(kind)
	return ct, err
}

// detect adds the regions and contacts of the touching pairs in model
func (in *Input) detect(p *InputParameters.DetectParameters, model *geometry.Model, log *utils.RunLog) error {
	mode, err := region.ParseNamingMode(p.Naming)
	if err != nil {
		return err
	}
	ct, err := contactType(p.Kind, p.Friction)
	if err != nil {
		return err
	}
	bodies := geometry.Load(model, model.BodyIDs(), log)
	targetIDs := lo.Uniq(model.TargetIDs())
	targets := lo.Filter(bodies, func(b geometry.Body, _ int) bool { return lo.Contains(targetIDs, b.ID) })
	pairs, err := geometry.Detect(targets, bodies, geometry.Options{
		Tolerance:   p.Tolerance,
		Workers:     p.Workers,
		BroadPhase:  p.BroadPhase,
		SingleSided: p.SingleSided,
	})
	if err != nil {
		return err
	}

	firstID := 1
	if len(in.Regions) > 0 {
		firstID = lo.MaxBy(in.Regions, func(a, b region.NamedRegion) bool { return a.ID > b.ID }).ID + 1
	}
	named := region.NamePairs(pairs, region.NamingOptions{
		Mode:     mode,
		Prefix:   p.Prefix,
		FirstID:  firstID,
		Existing: lo.Map(in.Regions, func(r region.NamedRegion, _ int) string { return r.Name }),
	})
	in.Regions = append(in.Regions, named...)
	in.Contacts = append(in.Contacts, PairDefinitions(pairs, named, mode, ct)...)
	return nil
}
