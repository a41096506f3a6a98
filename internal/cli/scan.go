package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanCount bool

var scanCmd = &cobra.Command{
	Use:   "scan [prefix]",
	Short: "List keys sharing a prefix",
	Long: `List the keys sharing a prefix, one per line, in ascending byte
order. With no prefix every key is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix []byte
		if len(args) == 1 {
			prefix = []byte(args[0])
		}

		s, _, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		it, err := s.NewPrefixIterator(prefix)
		if err != nil {
			return err
		}
		defer it.Close()

		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()

		count := 0
		for {
			key, more, err := it.Advance()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			count++
			if !scanCount {
				w.Write(key)
				w.WriteByte('\n')
			}
		}

		if scanCount {
			fmt.Fprintln(w, count)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanCount, "count", false, "print only the number of matching keys")
	rootCmd.AddCommand(scanCmd)
}
