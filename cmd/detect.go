/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/dynaprep/geometry"
	"github.com/notargets/dynaprep/region"
	"github.com/notargets/dynaprep/utils"
)

type pairRecord struct {
	FaceA int    `json:"faceA"`
	FaceB int    `json:"faceB"`
	BodyA int    `json:"bodyA"`
	BodyB int    `json:"bodyB"`
	DirA  string `json:"dirA"`
	DirB  string `json:"dirB"`
}

// detectReport is the YAML written by the detect command. Its regions can be
// pasted into a job file.
type detectReport struct {
	Tolerance float64              `json:"tolerance"`
	Pairs     []pairRecord         `json:"pairs"`
	Regions   []region.NamedRegion `json:"regions,omitempty"`
	Skipped   []utils.LogEntry     `json:"skipped,omitempty"`
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find touching planar faces between bodies",
	Long: `
Reads a body file (YAML or JSON) of planar faces and reports the face pairs
whose normals oppose and whose centroids lie within tolerance of each other's
plane, with the regions the selected naming mode gives them.

dynaprep detect -B bodies.yaml -t 1e-4 --naming merged -o pairs.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bodiesFile, _ := cmd.Flags().GetString("bodies")
		if bodiesFile == "" {
			return fmt.Errorf("must supply a body file (-B, --bodies)")
		}
		naming, _ := cmd.Flags().GetString("naming")
		mode, err := region.ParseNamingMode(naming)
		if err != nil {
			return err
		}
		prefix, _ := cmd.Flags().GetString("prefix")
		broad, _ := cmd.Flags().GetBool("broad-phase")
		single, _ := cmd.Flags().GetBool("single-sided")
		output, _ := cmd.Flags().GetString("output")

		model, err := geometry.LoadBodies(bodiesFile)
		if err != nil {
			return err
		}
		report, err := runDetect(model, geometry.Options{
			Tolerance:   viper.GetFloat64("tolerance"),
			Workers:     viper.GetInt("workers"),
			BroadPhase:  broad,
			SingleSided: single,
		}, region.NamingOptions{Mode: mode, Prefix: prefix})
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		if output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(output, data, 0o644)
	},
}

func runDetect(model *geometry.Model, opts geometry.Options, naming region.NamingOptions) (*detectReport, error) {
	log := utils.NewRunLog()
	bodies := geometry.Load(model, model.BodyIDs(), log)
	targetIDs := make(map[int]bool)
	for _, id := range model.TargetIDs() {
		targetIDs[id] = true
	}
	var targets []geometry.Body
	for _, b := range bodies {
		if targetIDs[b.ID] {
			targets = append(targets, b)
		}
	}
	pairs, err := geometry.Detect(targets, bodies, opts)
	if err != nil {
		return nil, err
	}
	report := &detectReport{
		Tolerance: opts.Tolerance,
		Regions:   region.NamePairs(pairs, naming),
		Skipped:   log.Entries(),
	}
	for _, p := range pairs {
		report.Pairs = append(report.Pairs, pairRecord{
			FaceA: p.A.ID, FaceB: p.B.ID,
			BodyA: p.A.BodyID, BodyB: p.B.BodyID,
			DirA: p.DirA.String(), DirB: p.DirB.String(),
		})
	}
	return report, nil
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringP("bodies", "B", "", "body file in YAML or JSON")
	detectCmd.Flags().String("naming", "per-pair", "region naming: per-pair, merged or by-direction")
	detectCmd.Flags().String("prefix", region.DefaultMergedPrefix, "region prefix of the merged naming")
	detectCmd.Flags().Bool("broad-phase", false, "filter candidate faces through an R-tree of face normals")
	detectCmd.Flags().Bool("single-sided", false, "report each target face once and skip target to target pairs")
	detectCmd.Flags().StringP("output", "o", "", "write the report here instead of stdout")
}
