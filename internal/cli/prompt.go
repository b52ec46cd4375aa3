// internal/cli/prompt.go
//
// Formcheck – `prompt` command.
//
// Workflow
//   1. Hint the form's fields to the Prompt surface.
//   2. Evaluate; every element is asked on first read.
//   3. On failure forget the failing asked elements and evaluate again,
//      up to --retries times.
//   4. Print the last result as JSON.
//
//------------------------------------------------------------------------------

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/formcheck/internal/form"
	"github.com/yanizio/formcheck/internal/surface"
)

func (a *app) promptCmd() *cobra.Command {
	var retries int

	cmd := &cobra.Command{
		Use:   "prompt <form>",
		Short: "Fill a form interactively and evaluate it",
		Long: `Fill a form interactively and evaluate it.

Each element is asked once.  When the form fails, only the failing elements
are asked again, up to --retries times.  Feedback goes to stderr and the
final result is printed to stdout as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			fd, ok := a.forms.Lookup(name)
			if !ok {
				return &ExitError{Code: ExitUsage, Err: fmt.Errorf("%w: %s", form.ErrUnknownForm, name)}
			}

			p := surface.NewPrompt(cmd.ErrOrStderr(), a.ask)
			p.Hint(fd)
			ev := a.evaluator(p)

			var res *form.Result
			for attempt := 0; ; attempt++ {
				var err error
				if res, err = ev.GetFormValues(name); err != nil {
					return err
				}
				if err := p.Err(); err != nil {
					if errors.Is(err, surface.ErrInterrupted) {
						return &ExitError{Code: ExitInterrupted, Err: err}
					}
					return err
				}
				if res.Valid() || attempt >= retries {
					break
				}

				ids := askedElements(fd, res)
				if len(ids) == 0 {
					break // only static values failed
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%d field(s) invalid, try again\n", len(res.Errors))
				p.Forget(ids...)
			}
			return printResult(cmd.OutOrStdout(), name, res)
		},
	}
	cmd.Flags().IntVar(&retries, "retries", 3, "times to re-ask failing fields")
	return cmd
}

// askedElements returns the element IDs behind the failed keys of res,
// skipping fields that carry a static value.
func askedElements(fd *form.FormDef, res *form.Result) []string {
	var ids []string
	for _, f := range fd.Fields {
		if _, failed := res.Errors[f.Key]; !failed {
			continue
		}
		if f.Def == nil || f.Def.Value != nil || f.Def.FieldID == "" {
			continue
		}
		ids = append(ids, f.Def.FieldID)
	}
	return ids
}
