package cli

import (
	"fmt"

	"github.com/geocombine/geocombine/document"
	"github.com/geocombine/geocombine/mderr"
	"github.com/geocombine/geocombine/xmlutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query --prefix PREFIX [--uri URI] --element NAME FILE",
	Short: "Print the text of namespaced elements",
	Long: `Print the text content of every element NAME in namespace URI found in FILE,
one value per line.

Without --uri, the prefix is resolved from the namespaces declared on the
document element. The dc and dct prefixes are always bound to the Dublin Core
namespaces.`,
	Example: `  geocombine query --prefix dc --element title record.xml
  geocombine query --prefix gmd --element abstract iso.xml
  geocombine query --prefix g --uri http://www.isotc211.org/2005/gmd --element abstract iso.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var queryFlags struct {
	prefix  string
	uri     string
	element string
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryFlags.prefix, "prefix", "", "Namespace prefix")
	f.StringVar(&queryFlags.uri, "uri", "", "Namespace URI (default: the document's binding for --prefix)")
	f.StringVar(&queryFlags.element, "element", "", "Element local name")
	_ = queryCmd.MarkFlagRequired("prefix")
	_ = queryCmd.MarkFlagRequired("element")
	rootCmd.AddCommand(queryCmd)
}

var builtinBindings = xmlutil.Bind(xmlutil.DC, xmlutil.DCT)

func runQuery(cmd *cobra.Command, args []string) error {
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}
	uri := queryFlags.uri
	if uri == "" {
		declared, err := doc.Namespaces()
		if err != nil {
			return err
		}
		if uri = declared.Merge(builtinBindings).Namespace(queryFlags.prefix); uri == "" {
			return errors.WithStack(mderr.InvalidValue(
				mderr.WithMessage("--uri is required for undeclared prefix " + queryFlags.prefix)))
		}
	}
	field, err := doc.Query(queryFlags.prefix, uri, queryFlags.element)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, v := range field.Strings() {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
