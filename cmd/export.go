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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/dynaprep/InputParameters"
	"github.com/notargets/dynaprep/export"
	"github.com/notargets/dynaprep/keyword"
	"github.com/notargets/dynaprep/utils"
)

const exampleJob = `
########################################
title: Bracket
mesh: bracket.msh          # .msh (Gmsh 2.2), .su2 or .neu (Gambit)
bodies: bracket.yaml       # planar faces, needed by detect and region faces
units: mm                  # mm or si
parts:
  - body: 1
    name: Base
    material: aluminum     # steel, aluminum or cfrp
regions:
  - id: 1
    name: base_top
    faces: [6]
  - id: 2
    name: lid_bottom
    faces: [11]
contacts:
  - name: Bolted
    contact: base_top
    target: lid_bottom
    kind: tied             # tied/bonded or automatic/frictional
detect:                    # optional, adds detected pairs
  tolerance: 1.0e-4
  naming: merged
########################################
`

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an LS-DYNA keyword deck from a job file",
	Long: `
Reads the mesh and body files named by a job file (YAML or TOML), resolves
regions to node sets, builds contact segment sets and writes the deck.

dynaprep export -J job.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobFile, _ := cmd.Flags().GetString("job")
		if jobFile == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Example File:%s\n", exampleJob)
			return fmt.Errorf("must supply a job file (-J, --job)")
		}
		job, err := InputParameters.ReadJob(jobFile)
		if err != nil {
			return err
		}
		if output, _ := cmd.Flags().GetString("output"); output != "" {
			job.Output = output
		}
		if viper.IsSet("units") {
			job.Units = viper.GetString("units")
		}
		if viper.GetBool("verbose") {
			job.Print()
		}
		return runExport(cmd, job)
	},
}

func runExport(cmd *cobra.Command, job *InputParameters.Job) error {
	log := utils.NewRunLog()
	in, err := export.FromJob(job, log)
	if err != nil {
		return err
	}
	res, err := export.Run(in)
	if err != nil {
		return err
	}
	if err = keyword.WriteFile(job.Output, res.Document, in.Units); err != nil {
		return err
	}
	doc := res.Document
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%s)\n", job.Output, in.Units.Name)
	fmt.Fprintf(out, "  Nodes: %d  Elements: %d  Parts: %d\n", len(doc.Nodes), doc.NumElements(), len(doc.Parts))
	fmt.Fprintf(out, "  Node sets: %d  Contacts: %d\n", len(doc.NodeSets), len(doc.Contacts))
	for _, c := range res.Contacts {
		fmt.Fprintf(out, "    %s: slave %s (%d segments, edge %.4g), master %s (%d segments, edge %.4g)\n",
			c.Card.Title, c.Slave.Title, len(c.Slave.Faces), c.SlaveEdge,
			c.Master.Title, len(c.Master.Faces), c.MasterEdge)
	}
	if log.Len() > 0 {
		log.Print()
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("job", "J", "", "job file in YAML or TOML")
	exportCmd.Flags().StringP("output", "o", "", "keyword file to write, overrides the job")
}
