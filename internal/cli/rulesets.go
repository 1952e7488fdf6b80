package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List the available rule sets",
	Args:  cobra.NoArgs,
	RunE:  runRuleSets,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)
}

func runRuleSets(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOUTPUT\tVERSION\tDESCRIPTION")
	for _, name := range registry.Names() {
		rs, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rs.Name, rs.Output, rs.Version, rs.Description)
	}
	return errors.WithStack(tw.Flush())
}
