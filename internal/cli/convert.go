package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/geoblacklight"
	"github.com/geocombine/geocombine/internal/config"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/ruleset"
	"github.com/geocombine/geocombine/schema"
	"github.com/geocombine/geocombine/transform"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] FILE...",
	Short: "Convert metadata files",
	Long: `Convert each FILE to a Geoblacklight record (XML), Solr JSON or an HTML view.

The schema of each input is detected from its root element unless --schema
is given. Inputs that already are Geoblacklight records, as Solr JSON or in
the record XML form, are normalized with the geoblacklight2geoBL rule set.

Results are written to stdout in the order the files were given. A FILE of
"-" reads one document from stdin.`,
	Example: `  geocombine convert --param provenance=Stanford iso19139.xml
  geocombine convert --format json --schema fgdc *.xml
  geocombine convert --format html record.json
  curl -s https://example.org/iso.xml | geocombine convert -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

var convertFlags struct {
	schema string
	format string
	params []string
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertFlags.schema, "schema", config.SchemaAuto,
		"Input schema: auto, "+strings.Join(schema.Names(), ", "))
	f.StringVar(&convertFlags.format, "format", config.FormatGeoblacklight,
		"Output format: geoblacklight, json or html")
	f.StringArrayVar(&convertFlags.params, "param", nil, "Rule set parameter as key=value (repeatable)")
	rootCmd.AddCommand(convertCmd)
}

// converter converts single inputs according to resolved settings
type converter struct {
	schema   string
	format   string
	params   map[string]string
	registry *ruleset.Registry
	stdin    io.Reader
}

func runConvert(cmd *cobra.Command, args []string) error {
	c := &converter{
		schema:   cfg.Schema,
		format:   cfg.Format,
		params:   map[string]string{},
		registry: registry,
		stdin:    cmd.InOrStdin(),
	}
	flags := cmd.Flags()
	if flags.Changed("schema") {
		c.schema = convertFlags.schema
	}
	if flags.Changed("format") {
		c.format = convertFlags.format
	}
	for k, v := range cfg.Params {
		c.params[k] = v
	}
	for _, p := range convertFlags.params {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return errors.WithStack(mderr.InvalidValue(
				mderr.WithMessage("--param " + strconv.Quote(p) + " is not key=value")))
		}
		c.params[k] = v
	}
	stdin := 0
	for _, input := range args {
		if input == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return errors.WithStack(mderr.InvalidValue(mderr.WithMessage("stdin (-) may be given only once")))
	}

	check := *cfg
	check.Schema, check.Format = c.schema, c.format
	if err := check.Validate(); err != nil {
		return errors.WithStack(mderr.InvalidValue(mderr.WithCause(err)))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := c.convertAll(ctx, args, cfg.Workers)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, s := range out {
		if _, err := fmt.Fprintln(w, strings.TrimRight(s, "\n")); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// convertAll converts every input with at most workers running at once.
// Results are returned in input order; the first failure cancels inputs
// not yet started.
func (c *converter) convertAll(ctx context.Context, inputs []string, workers int) ([]string, error) {
	out := make([]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := c.convert(input)
			if err != nil {
				return errors.Wrapf(err, "convert %s", input)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *converter) convert(input string) (string, error) {
	doc, err := c.load(input)
	if err != nil {
		return "", err
	}
	rec, err := c.record(doc)
	if err != nil {
		return "", err
	}
	if rec == nil {
		a, err := schema.New(c.schema, doc, schema.WithRegistry(c.registry), schema.WithParams(c.params))
		if err != nil {
			return "", err
		}
		glog.V(1).Infof("cli: %s as %s", input, a.Name())
		if c.format == config.FormatHTML {
			return a.ToHTML()
		}
		if rec, err = a.ToGeoblacklight(); err != nil {
			return "", err
		}
	}

	switch c.format {
	case config.FormatHTML:
		return rec.ToHTML(c.registry, transform.WithParams(c.params))
	case config.FormatJSON:
		b, err := rec.JSON()
		return string(b), err
	}
	return rec.XML()
}

func (c *converter) load(input string) (*document.Document, error) {
	if input == "-" {
		return document.ParseReader(c.stdin)
	}
	return document.Load(input)
}

// record returns doc as a normalized Geoblacklight record when the schema
// is detected automatically and doc already is one. A nil record means
// doc goes through a schema adapter.
func (c *converter) record(doc *document.Document) (*geoblacklight.Record, error) {
	if c.schema != config.SchemaAuto {
		return nil, nil
	}
	rec, err := geoblacklight.NewRecord(doc)
	if err != nil {
		// not a record; the adapter reports why if it is not recognized either
		return nil, nil
	}
	rs, err := c.registry.Get(ruleset.GeoblacklightToGeoblacklight)
	if err != nil {
		return nil, err
	}
	return rec.Transform(rs, transform.WithParams(c.params))
}
