// components/contact/widgets/wizard.go
//
// Three-step wizard: Question → Confirmation → Answer.
//
// Each step's view embeds {{ widgetFields "<next state>" }}, so the POST
// lands on the method for that state.  The answer travels between steps in
// a hidden field; nothing is kept on the server.
package widgets

import (
	"strings"

	"github.com/yanizio/widgets/internal/widget"
)

// WizardWidget walks the visitor through a question.
type WizardWidget struct{ widget.Base }

type wizardModel struct {
	Answer string
}

func (w *WizardWidget) WidgetParams(method string) []string {
	switch method {
	case "InvokeConfirmationPost":
		return []string{"answer,form"}
	case "InvokeAnswerPost":
		return []string{"answer,form", "confirm,form"}
	}
	return nil
}

// Invoke shows the question.
func (w *WizardWidget) Invoke() widget.Result {
	return w.View("Question", wizardModel{})
}

// InvokeConfirmationPost asks the visitor to confirm their answer.
func (w *WizardWidget) InvokeConfirmationPost(answer string) widget.Result {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		w.ModelState().AddError("answer", "Please enter an answer.")
		return w.View("Question", wizardModel{})
	}
	return w.View("Confirmation", wizardModel{Answer: answer})
}

// InvokeAnswerPost shows the result, or goes back when not confirmed.
func (w *WizardWidget) InvokeAnswerPost(answer string, confirm bool) widget.Result {
	if !confirm {
		return w.View("Question", wizardModel{Answer: answer})
	}
	return w.View("Answer", wizardModel{Answer: answer})
}

func init() { widget.Register(&WizardWidget{}) }
