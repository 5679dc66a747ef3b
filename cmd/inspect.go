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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/dynaprep/keyword"
	"github.com/notargets/dynaprep/mesh"
	"github.com/notargets/dynaprep/mesh/readers"
	"github.com/notargets/dynaprep/utils"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Summarize a keyword deck or a mesh file",
	Long: `
For .k and .key files prints card counts and set sizes read back by fixed
columns. For mesh files prints element statistics, node groups and the
boundary surfaces found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".k", ".key", ".dyn":
			deck, err := keyword.ReadFile(filename)
			if err != nil {
				return err
			}
			deck.PrintSummary()
			return nil
		}
		m, err := readers.ReadMeshFile(filename)
		if err != nil {
			return err
		}
		m.PrintStatistics()
		log := utils.NewRunLog()
		boundary := mesh.ExtractBoundary(m, log)
		patches := mesh.Patches(boundary.Faces)
		fmt.Printf("  Boundary faces: %d in %d surfaces\n", len(boundary.Faces), len(patches))
		for i, p := range patches {
			fmt.Printf("    surface %d: %d faces\n", i+1, len(p))
		}
		if log.Len() > 0 {
			log.Print()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
