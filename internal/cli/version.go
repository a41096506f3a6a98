package cli

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flatkv/flatkv/internal/store"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for flatkv including available engines and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flatkv version %s\n", rootCmd.Version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

		engines := store.Engines()
		sort.Strings(engines)
		fmt.Printf("Engines: %v\n", engines)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
