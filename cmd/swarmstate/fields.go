package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/swarmstate/pkg/reducer"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the active fields and their merge strategies",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFields(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().String("group", "", "Only show fields from this group")
}

// strategyColors gives each reducer family a distinct hue in the listing.
var strategyColors = map[reducer.Strategy]string{
	reducer.LastWriteWins:     "#94a3b8",
	reducer.AppendHistory:     "#818cf8",
	reducer.MonotonicProgress: "#34d399",
	reducer.PermissionMerge:   "#f472b6",
	reducer.AppendBounded:     "#a78bfa",
	reducer.Chronological:     "#60a5fa",
	reducer.DedupAppend:       "#c084fc",
	reducer.KeyedDedup:        "#f97316",
	reducer.DeepMerge:         "#fbbf24",
}

func runFields(cmd *cobra.Command) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	groupFilter, _ := cmd.Flags().GetString("group")

	p := termenv.ColorProfile()
	for _, d := range eng.Registry().ActiveFields() {
		if groupFilter != "" && string(d.Group) != groupFilter {
			continue
		}

		strategy := termenv.String(string(d.Strategy)).Foreground(p.Color(strategyColors[d.Strategy]))
		name := termenv.String(d.Name).Bold()

		retention := ""
		if d.Retention != nil && d.Retention.MaxEntries > 0 {
			retention = fmt.Sprintf(" (max %d)", d.Retention.MaxEntries)
		}

		fmt.Printf("%-36s %-20s %s%s\n", name, strategy, d.Group, retention)
	}
	return nil
}
