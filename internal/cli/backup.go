package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flatkv/flatkv/internal/backup"
)

var backupFlush bool

var backupCmd = &cobra.Command{
	Use:   "backup [dir]",
	Short: "Take a full backup of the database",
	Long: `Take a full backup of the database into the given directory,
replacing any backup already stored there. The directory defaults to
backup.dir from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		dir := cfg.Backup.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no backup directory: pass one or set backup.dir in the config file")
		}

		flush := cfg.Backup.FlushFirst
		if cmd.Flags().Changed("flush") {
			flush = backupFlush
		}

		if err := backup.Create(s, dir, flush); err != nil {
			return err
		}

		info, err := backup.Latest(dir)
		if err != nil {
			return err
		}
		fmt.Printf("backup %d created in %s\n", info.ID, dir)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-dir> <db-path>",
	Short: "Restore the latest backup",
	Long: `Restore the most recent backup from backup-dir into db-path,
replacing whatever db-path currently holds.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := backup.RestoreLatest(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("restored %s from %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	backupCmd.Flags().BoolVar(&backupFlush, "flush", true, "flush in-memory writes before the backup")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
