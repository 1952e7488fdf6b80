package cli

import (
	"flag"

	"github.com/geocombine/geocombine/internal/config"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geocombine",
	Short: "Convert geospatial metadata to Geoblacklight records",
	Long: `geocombine converts FGDC, ISO 19139, CSW and Dublin Core metadata into
Geoblacklight 1.0 discovery records, Solr JSON or HTML views.

Conversions are driven by declarative rule sets. The built-in rule sets may
be overridden from a directory with --rulesets.

Configuration is read from geocombine.yaml (or --config), then .env and the
GEOCOMBINE_RULESETS, GEOCOMBINE_WORKERS and GEOCOMBINE_PROVENANCE environment
variables, then flags.

Exit Codes:
  0  - Success
  1  - General error
  2  - Usage error or invalid argument
  10 - Invalid configuration or rule set
  11 - Input could not be loaded
  12 - Input is the wrong kind of document
  13 - Conversion failed`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var rootFlags struct {
	config   string
	rulesets string
	workers  int
}

// session state shared by the subcommands, built by setup
var (
	cfg      *config.Config
	registry *ruleset.Registry
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "", "Config file (default ./"+config.FileName+" if present)")
	pf.StringVar(&rootFlags.rulesets, "rulesets", "", "Directory of *.yaml rule sets overriding the built-ins")
	pf.IntVar(&rootFlags.workers, "workers", 0, "Maximum number of inputs converted concurrently")
	pf.AddGoFlagSet(flag.CommandLine)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Resolve(rootFlags.config)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("rulesets") {
		c.RuleSets = rootFlags.rulesets
	}
	if flags.Changed("workers") {
		c.Workers = rootFlags.workers
	}
	if err := c.Validate(); err != nil {
		return err
	}

	reg, err := ruleset.NewRegistry(ruleset.WithDir(c.RuleSets))
	if err != nil {
		return err
	}
	glog.V(1).Infof("cli: %d rule sets, %d workers", len(reg.Names()), c.Workers)
	cfg, registry = c, reg
	return nil
}
