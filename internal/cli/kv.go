package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <key> [value]",
	Short: "Write a key/value pair",
	Long:  `Write a key/value pair. When value is omitted it is read from stdin.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value []byte
		if len(args) == 2 {
			value = []byte(args[1])
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read value from stdin: %w", err)
			}
			value = data
		}

		s, _, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Put([]byte(args[0]), value)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read the value stored under a key",
	Long:  `Read the value stored under a key and write it, raw, to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		value, found, err := s.Get([]byte(args[0]))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("key not found: %s", args[0])
		}

		_, err = os.Stdout.Write(value)
		return err
	},
}

var delCmd = &cobra.Command{
	Use:   "del <key>",
	Short: "Delete a key",
	Long:  `Delete a key. Deleting an absent key succeeds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Delete([]byte(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(delCmd)
}
