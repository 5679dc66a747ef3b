package main

import "github.com/notargets/dynaprep/cmd"

func main() {
	cmd.Execute()
}
