package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/swarmstate/pkg/state"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <state.json>",
	Short: "Migrate a state snapshot to another schema version",
	Long:  `Rewrites a serialized state file to the target schema version. Without --target the state is auto-migrated to the current version with a backup written alongside.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd, args[0]); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("target", "", "Target schema version (default: current)")
	migrateCmd.Flags().StringP("output", "o", "", "Output file (default: overwrite input)")
	migrateCmd.Flags().Bool("no-backup", false, "Skip writing a backup file before auto-migration")
	migrateCmd.Flags().Bool("dry-run", false, "Verify the migration without writing anything")
}

func runMigrate(cmd *cobra.Command, path string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	st, err := loadStateFile(path)
	if err != nil {
		return err
	}

	target, _ := cmd.Flags().GetString("target")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noBackup, _ := cmd.Flags().GetBool("no-backup")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = path
	}

	var migrated state.State
	if target != "" {
		if dryRun {
			if err := eng.Migrator().Verify(st, target); err != nil {
				return err
			}
			fmt.Printf("Dry run: %s -> %s would succeed\n", st.Version(), target)
			return nil
		}
		migrated, err = eng.MigrateState(st, target)
		if err != nil {
			return err
		}
	} else {
		migrated, _, err = eng.AutoMigrateState(st)
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Printf("Dry run: %s -> %s would succeed\n", st.Version(), migrated.Version())
			return nil
		}
		if !noBackup && st.Version() != migrated.Version() {
			backupPath := fmt.Sprintf("%s.backup-%s", path, time.Now().UTC().Format("20060102150405"))
			if err := writeStateFile(backupPath, st); err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", backupPath)
		}
	}

	if err := writeStateFile(output, migrated); err != nil {
		return err
	}
	fmt.Printf("Migrated %s -> %s (%s)\n", st.Version(), migrated.Version(), output)
	return nil
}
