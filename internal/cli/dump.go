package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flatkv/flatkv/internal/dump"
)

var (
	exportPrefix   string
	exportCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export key/value pairs to a dump file",
	Long: `Export key/value pairs to a stream of msgpack records,
optionally lz4-compressed. "-" writes to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		out := os.Stdout
		if args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		count, err := dump.Export(s, out, dump.Options{
			Prefix:   []byte(exportPrefix),
			Compress: exportCompress,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d records\n", count)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import key/value pairs from a dump file",
	Long: `Import key/value pairs from a dump file written by export.
Compression is detected automatically. "-" reads from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		in := os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		count, err := dump.Import(s, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "imported %d records\n", count)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "restrict the export to keys with this prefix")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "lz4-compress the output stream")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
