package InputParameters

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/notargets/dynaprep/contact"
	"github.com/notargets/dynaprep/keyword"
	"github.com/notargets/dynaprep/region"
)

// PartParameters binds a material and shell thickness to a body
type PartParameters struct {
	Body      int     `json:"body" toml:"body"`
	Name      string  `json:"name,omitempty" toml:"name,omitempty"`
	Material  string  `json:"material,omitempty" toml:"material,omitempty"` // Preset name, steel when empty
	Density   float64 `json:"density,omitempty" toml:"density,omitempty"`   // Overrides, SI
	Youngs    float64 `json:"youngs,omitempty" toml:"youngs,omitempty"`
	Poisson   float64 `json:"poisson,omitempty" toml:"poisson,omitempty"`
	Thickness float64 `json:"thickness,omitempty" toml:"thickness,omitempty"` // Shells, meters
}

type RegionParameters struct {
	ID    int    `json:"id" toml:"id"`
	Name  string `json:"name" toml:"name"`
	Faces []int  `json:"faces,omitempty" toml:"faces,omitempty"`
}

// ContactParameters references regions by name
type ContactParameters struct {
	Name     string  `json:"name" toml:"name"`
	Contact  string  `json:"contact" toml:"contact"`
	Target   string  `json:"target" toml:"target"`
	Kind     string  `json:"kind,omitempty" toml:"kind,omitempty"` // tied when empty
	Friction float64 `json:"friction,omitempty" toml:"friction,omitempty"`
}

// DetectParameters turns on contact detection from the body file. Detected
// pairs become regions and contacts in addition to the listed ones.
type DetectParameters struct {
	Tolerance   float64 `json:"tolerance" toml:"tolerance"` // Meters
	Workers     int     `json:"workers,omitempty" toml:"workers,omitempty"`
	BroadPhase  bool    `json:"broadPhase,omitempty" toml:"broadPhase,omitempty"`
	// SingleSided keeps one match per target face and never pairs two targets
	SingleSided bool    `json:"singleSided,omitempty" toml:"singleSided,omitempty"`
	Naming      string  `json:"naming,omitempty" toml:"naming,omitempty"`
	Prefix      string  `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Kind        string  `json:"kind,omitempty" toml:"kind,omitempty"`
	Friction    float64 `json:"friction,omitempty" toml:"friction,omitempty"`
}

type CurveParameters struct {
	ID     int          `json:"id" toml:"id"`
	Title  string       `json:"title,omitempty" toml:"title,omitempty"`
	Points [][2]float64 `json:"points" toml:"points"`
}

// Job is one export, read from a YAML or TOML file
type Job struct {
	Title          string              `json:"title" toml:"title"`
	Mesh           string              `json:"mesh" toml:"mesh"`
	Bodies         string              `json:"bodies,omitempty" toml:"bodies,omitempty"`
	Output         string              `json:"output,omitempty" toml:"output,omitempty"`
	Units          string              `json:"units,omitempty" toml:"units,omitempty"`
	PlaneTolerance float64             `json:"planeTolerance,omitempty" toml:"planeTolerance,omitempty"`
	Thickness      float64             `json:"thickness,omitempty" toml:"thickness,omitempty"` // Default shell thickness, meters
	EndTime        float64             `json:"endTime,omitempty" toml:"endTime,omitempty"`
	Parts          []PartParameters    `json:"parts,omitempty" toml:"parts,omitempty"`
	Regions        []RegionParameters  `json:"regions,omitempty" toml:"regions,omitempty"`
	Contacts       []ContactParameters `json:"contacts,omitempty" toml:"contacts,omitempty"`
	Detect         *DetectParameters   `json:"detect,omitempty" toml:"detect,omitempty"`
	Curves         []CurveParameters   `json:"curves,omitempty" toml:"curves,omitempty"`
}

const (
	DefaultUnits     = "mm"
	DefaultThickness = 0.001
)

func (j *Job) Parse(data []byte) error {
	return yaml.Unmarshal(data, j)
}

func (j *Job) ParseTOML(data []byte) error {
	return toml.Unmarshal(data, j)
}

// ReadJob reads a job file, TOML for .toml and YAML otherwise. Relative
// mesh, body and output paths are taken from the job file's directory.
func ReadJob(filename string) (*Job, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	j := &Job{}
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = j.ParseTOML(data)
	} else {
		err = j.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing job file %s: %w", filename, err)
	}
	dir := filepath.Dir(filename)
	for _, p := range []*string{&j.Mesh, &j.Bodies, &j.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	j.SetDefaults()
	return j, nil
}

func (j *Job) SetDefaults() {
	if j.Units == "" {
		j.Units = DefaultUnits
	}
	if j.Thickness == 0 {
		j.Thickness = DefaultThickness
	}
	if j.Output == "" && j.Mesh != "" {
		j.Output = strings.TrimSuffix(j.Mesh, filepath.Ext(j.Mesh)) + ".k"
	}
	if j.Title == "" {
		j.Title = strings.TrimSuffix(filepath.Base(j.Output), filepath.Ext(j.Output))
	}
}

// Validate reports every problem of the job at once
func (j *Job) Validate() error {
	var errs []error
	bad := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }
	if j.Mesh == "" {
		bad("a mesh file is required")
	}
	if _, err := keyword.ParseUnits(j.Units); err != nil {
		errs = append(errs, err)
	}
	if !finiteNonNegative(j.PlaneTolerance) || !finiteNonNegative(j.Thickness) || !finiteNonNegative(j.EndTime) {
		bad("planeTolerance, thickness and endTime must be finite and non-negative")
	}
	for _, p := range j.Parts {
		if p.Material != "" {
			if _, err := keyword.Preset(p.Material); err != nil {
				errs = append(errs, fmt.Errorf("part for body %d: %w", p.Body, err))
			}
		}
	}
	names := make(map[string]bool, len(j.Regions))
	for _, r := range j.Regions {
		if names[r.Name] {
			bad("duplicate region name %q", r.Name)
		}
		names[r.Name] = true
	}
	for _, c := range j.Contacts {
		if c.Kind != "" {
			if _, err := contact.ParseKind(c.Kind); err != nil {
				errs = append(errs, fmt.Errorf("contact %s: %w", c.Name, err))
			}
		}
		for _, side := range []string{c.Contact, c.Target} {
			if !names[side] {
				bad("contact %s references unknown region %q", c.Name, side)
			}
		}
	}
	if d := j.Detect; d != nil {
		if j.Bodies == "" {
			bad("detection needs a body file")
		}
		if !(d.Tolerance > 0) || math.IsInf(d.Tolerance, 0) {
			bad("detect tolerance must be finite and positive, got %g", d.Tolerance)
		}
		if _, err := region.ParseNamingMode(d.Naming); err != nil {
			errs = append(errs, err)
		}
		if d.Kind != "" {
			if _, err := contact.ParseKind(d.Kind); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (j *Job) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", j.Title)
	fmt.Printf("[%s]\t\t= Mesh\n", j.Mesh)
	if j.Bodies != "" {
		fmt.Printf("[%s]\t\t= Bodies\n", j.Bodies)
	}
	fmt.Printf("[%s]\t\t= Output\n", j.Output)
	fmt.Printf("[%s]\t\t\t= Units\n", j.Units)
	fmt.Printf("%8.5g\t\t= Shell Thickness\n", j.Thickness)
	if j.EndTime > 0 {
		fmt.Printf("%8.5g\t\t= End Time\n", j.EndTime)
	}
	parts := make([]PartParameters, len(j.Parts))
	copy(parts, j.Parts)
	sort.Slice(parts, func(a, b int) bool { return parts[a].Body < parts[b].Body })
	for _, p := range parts {
		fmt.Printf("Parts[%d] = %s %s\n", p.Body, p.Name, p.Material)
	}
	for _, r := range j.Regions {
		fmt.Printf("Regions[%s] = %v\n", r.Name, r.Faces)
	}
	for _, c := range j.Contacts {
		fmt.Printf("Contacts[%s] = %s -> %s (%s, %g)\n", c.Name, c.Contact, c.Target, c.Kind, c.Friction)
	}
	if d := j.Detect; d != nil {
		fmt.Printf("%8.5g\t\t= Detect Tolerance\n", d.Tolerance)
		fmt.Printf("[%s]\t\t\t= Naming\n", d.Naming)
		fmt.Printf("[%v]\t\t\t= Single Sided\n", d.SingleSided)
	}
}
