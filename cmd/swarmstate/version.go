package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/swarmstate"
	"github.com/aretw0/swarmstate/pkg/registry"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of swarmstate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("swarmstate version %s (schema %s)\n",
			strings.TrimSpace(swarmstate.Version), registry.CurrentSchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
