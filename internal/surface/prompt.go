// internal/surface/prompt.go
//
// Terminal surface on survey/v2.
//
// Context
//   Prompt lets an operator fill a form from the shell.  Values are asked
//   lazily: the first time the evaluator reads an element the user is
//   prompted, and the answer is kept in the embedded Page so a second
//   evaluation reuses it.  Indicator and border changes are echoed to out.
//
// Workflow
//   1. NewPrompt(out, nil) uses survey; tests pass their own Asker.
//   2. Hint(fd) tells the prompt which elements are passwords or
//      multi-selects, and which key to show as the question.
//   3. After a failed evaluation, Forget the failing elements and evaluate
//      again to re-ask only those.
//
//------------------------------------------------------------------------------

package surface

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/yanizio/formcheck/internal/form"
)

// ErrInterrupted is reported by Err after the user pressed Ctrl-C.
var ErrInterrupted = errors.New("prompt interrupted")

// Question describes one value request.
type Question struct {
	ElementID string
	Label     string
	Secret    bool // hide input
	Multi     bool // comma separated list
}

// Asker obtains the answer to q.
type Asker func(q Question) (string, error)

// Prompt implements form.Surface by asking the user for each element.
type Prompt struct {
	*Page
	ask   Asker
	out   io.Writer
	hints map[string]Question
	err   error
}

var (
	_ form.Surface         = (*Prompt)(nil)
	_ form.SelectionReader = (*Prompt)(nil)
)

// NewPrompt returns a Prompt writing feedback to out.  A nil ask uses survey.
func NewPrompt(out io.Writer, ask Asker) *Prompt {
	if ask == nil {
		ask = SurveyAsk
	}
	return &Prompt{
		Page:  NewPage(),
		ask:   ask,
		out:   out,
		hints: map[string]Question{},
	}
}

// Hint records question details for every element of fd.
func (p *Prompt) Hint(fd *form.FormDef) {
	for _, f := range fd.Fields {
		if f.Def == nil || f.Def.FieldID == "" || f.Def.Value != nil {
			continue
		}
		p.hints[f.Def.FieldID] = Question{
			ElementID: f.Def.FieldID,
			Label:     f.Key,
			Secret:    f.Def.Type == form.TypePassword,
			Multi:     f.Def.Type == form.TypeMultiSelect,
		}
	}
}

// Forget drops cached answers so the next read asks again.
func (p *Prompt) Forget(ids ...string) {
	for _, id := range ids {
		p.Page.Remove(id)
	}
}

// Err returns the first asking failure.  Once set no more questions are
// asked and reads return empty values.
func (p *Prompt) Err() error { return p.err }

// ElementExists implements form.Surface.  Every element can be asked for.
func (p *Prompt) ElementExists(string) bool { return true }

// ReadValue implements form.Surface.
func (p *Prompt) ReadValue(id string) string {
	p.fill(id)
	return p.Page.ReadValue(id)
}

// ReadSelection implements form.SelectionReader.
func (p *Prompt) ReadSelection(id string) []string {
	p.fill(id)
	return p.Page.ReadSelection(id)
}

// ShowIndicator implements form.Surface.
func (p *Prompt) ShowIndicator(id string) {
	p.Page.ShowIndicator(id)
	fmt.Fprintf(p.out, "  ! %s\n", id)
}

// SetErrorBorder implements form.Surface.
func (p *Prompt) SetErrorBorder(t form.Target) {
	p.Page.SetErrorBorder(t)
	fmt.Fprintf(p.out, "  ✗ %s is invalid\n", p.question(t.ID).Label)
}

func (p *Prompt) fill(id string) {
	if p.err != nil || p.Page.ElementExists(id) {
		return
	}
	q := p.question(id)
	ans, err := p.ask(q)
	if err != nil {
		p.err = err
		return
	}
	if !q.Multi {
		p.Page.Set(id, ans)
		return
	}
	var items []string
	for _, it := range strings.Split(ans, ",") {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	p.Page.Set(id, items...)
}

func (p *Prompt) question(id string) Question {
	if q, ok := p.hints[id]; ok {
		return q
	}
	return Question{ElementID: id, Label: id}
}

// SurveyAsk asks q on the controlling terminal.
func SurveyAsk(q Question) (string, error) {
	var (
		out    string
		prompt survey.Prompt
	)
	switch {
	case q.Secret:
		prompt = &survey.Password{Message: q.Label}
	case q.Multi:
		prompt = &survey.Input{Message: q.Label, Help: "Comma separated values."}
	default:
		prompt = &survey.Input{Message: q.Label}
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrInterrupted
		}
		return "", err
	}
	return out, nil
}
