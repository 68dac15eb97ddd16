// components/contact/widgets/contactform.go
//
// Contact form widget.
//
// Workflow
// --------
//   - GET (or any request not aimed at this widget) renders the empty Form.
//   - A POST carrying this widget's __posttarget binds ContactModel from the
//     form, validates it, and either re-renders Form with the errors or
//     saves the message and renders Thanks.
//
// Embed it with {{ widgetAs "ContactForm" "contact" }}; the id keeps two
// forms on one page from answering each other's POST.
package widgets

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanizio/widgets/components/contact"
	"github.com/yanizio/widgets/internal/widget"
)

// ContactModel is the posted form.
type ContactModel struct {
	Name      string `form:"name"      validate:"required,max=100"`
	Email     string `form:"email"     validate:"required,email,max=254"`
	Topic     string `form:"topic"     validate:"omitempty,oneof=sales support other"`
	Message   string `form:"message"   validate:"required,min=10,max=2000"`
	Subscribe bool   `form:"subscribe"`
}

// Topics lists the choices the Form view renders.
var Topics = []string{"sales", "support", "other"}

// ContactFormWidget collects messages into a contact.Store.
type ContactFormWidget struct {
	widget.Base
	Store contact.Store `widget:"service"`
	Log   *zap.Logger   `widget:"service"`
}

func (w *ContactFormWidget) WidgetParams(method string) []string {
	if method == "InvokePostAsync" {
		return []string{"", "contact"}
	}
	return nil
}

// Invoke renders the empty form.
func (w *ContactFormWidget) Invoke() widget.Result {
	return w.View("Form", formModel{Topics: Topics})
}

// InvokePostAsync validates and stores a submission.
func (w *ContactFormWidget) InvokePostAsync(ctx context.Context, m ContactModel) (widget.Result, error) {
	if m == (ContactModel{}) {
		w.ModelState().AddError("Message", "Please fill in the form.")
	}
	if !w.ModelState().Valid() {
		return w.View("Form", formModel{ContactModel: m, Topics: Topics}), nil
	}

	msg := &contact.Message{
		Name:      m.Name,
		Email:     m.Email,
		Topic:     m.Topic,
		Body:      m.Message,
		Subscribe: m.Subscribe,
	}
	id, err := w.Store.Save(ctx, msg)
	if err != nil {
		return nil, err
	}
	w.Log.Info("contact message saved", zap.Int64("id", id), zap.String("topic", m.Topic))
	return w.View("Thanks", msg), nil
}

type formModel struct {
	ContactModel
	Topics []string
}

func init() { widget.Register(&ContactFormWidget{}) }
