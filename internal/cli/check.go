// internal/cli/check.go
//
// Formcheck – `check` command.
//
// Context
//   Reads element values from a YAML map (a file, or stdin for "-"), loads
//   them into a surface.Page, and prints the evaluation as JSON.  Each value
//   is a scalar or a list; lists feed multi-select elements.
//
//------------------------------------------------------------------------------

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/formcheck/internal/form"
	"github.com/yanizio/formcheck/internal/surface"
)

// checkOutput is printed by `check` and `prompt`.
type checkOutput struct {
	Form   string            `json:"form"`
	Valid  bool              `json:"valid"`
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors"`
}

func (a *app) checkCmd() *cobra.Command {
	var valuesPath string

	cmd := &cobra.Command{
		Use:   "check <form>",
		Short: "Evaluate a form against a values file",
		Long: `Evaluate a form against a values file.

The values file is a YAML mapping from element ID to a scalar or a list:

  repairer_name: Garage Dupont
  repairer_mail: contact@dupont.fr
  repairer_skills: [carrosserie, peinture]

Elements missing from the file read as empty.  Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := readValues(cmd.InOrStdin(), valuesPath)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}
			return a.report(cmd.OutOrStdout(), args[0], page)
		},
	}
	cmd.Flags().StringVarP(&valuesPath, "values", "f", "", "YAML values file (\"-\" for stdin)")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

// report evaluates name over s and prints the result.
func (a *app) report(out io.Writer, name string, s form.Surface) error {
	res, err := a.evaluator(s).GetFormValues(name)
	if errors.Is(err, form.ErrUnknownForm) {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	return printResult(out, name, res)
}

// printResult writes res as indented JSON and maps the verdict to an exit
// code.
func printResult(out io.Writer, name string, res *form.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(checkOutput{
		Form:   name,
		Valid:  res.Valid(),
		Values: res.Values,
		Errors: res.Errors,
	}); err != nil {
		return err
	}

	if !res.Valid() {
		return &ExitError{Code: ExitInvalid}
	}
	return nil
}

// readValues decodes a values file into a Page.
func readValues(stdin io.Reader, path string) (*surface.Page, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}

	page := surface.NewPage()
	for id, v := range doc {
		switch v := v.(type) {
		case nil:
			page.Set(id, "")
		case []any:
			items := make([]string, 0, len(v))
			for _, it := range v {
				items = append(items, fmt.Sprint(it))
			}
			page.Set(id, items...)
		case map[string]any:
			return nil, fmt.Errorf("values %s: element %q must be a scalar or a list", path, id)
		default:
			page.Set(id, fmt.Sprint(v))
		}
	}
	return page, nil
}
