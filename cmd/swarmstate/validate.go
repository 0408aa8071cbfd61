package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/swarmstate/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <state.json>",
	Short: "Check a state snapshot against the field registry",
	Long:  `Validates a serialized state file. Lenient mode reports every violation; strict mode additionally checks enum membership, numeric ranges and nested shapes.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("State is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail on the first violated rule instead of shape-checking")
}

func runValidate(cmd *cobra.Command, path string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	st, err := loadStateFile(path)
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if err := eng.ValidateState(st, strict); err != nil {
		var agg *schema.AggregateError
		if errors.As(err, &agg) {
			for _, violation := range agg.Errors {
				fmt.Printf("  - %v\n", violation)
			}
			return fmt.Errorf("%d violation(s)", len(agg.Errors))
		}
		return err
	}
	return nil
}
