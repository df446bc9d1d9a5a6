package cmd

import (
	"fmt"
	"io"
	"os"

	"codesight/internal/sniff"

	"github.com/spf13/cobra"
)

var detectExplain bool

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Print the language of a code snippet",
	Long:  `Reads the file, or stdin when no file is given, and prints the detected language tag.
Only the first 64 KiB are examined.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		lang, rule := sniff.Explain(string(data))
		if detectExplain {
			if rule == "" {
				rule = "none"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(rule: %s)\n", lang, rule)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), lang)
		return nil
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectExplain, "explain", false, "also print the rule that matched")
}
