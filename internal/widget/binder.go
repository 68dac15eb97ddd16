// internal/widget/binder.go
//
// Argument binder.
//
// Context
// -------
// Each formal parameter of the selected Invoke method is resolved in this
// order, first hit wins:
//
//  1. Caller arguments.  A key equal to the parameter name is used as is,
//     with no conversion and no validation.
//  2. Ambient values: context.Context, *widget.Context, *http.Request,
//     *widget.ModelState, and *widget.ViewData.
//  3. Services, for parameters declared "name,services".
//  4. Model binding against form, route, and query values (or the single
//     declared source).  Scalars bind by key; structs, maps, and slices
//     bind from the nested form tree.  A bound value is validated and
//     failures are recorded in ModelState.
//  5. The zero value.  Pointer-to-struct parameters get a fresh instance.
//
// Fatal failures are an unreadable request body, a caller argument of the
// wrong type, and a missing service.  Everything else is user input and
// belongs in ModelState.

package widget

import (
	"context"
	"encoding"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
)

const maxMultipartMemory = 32 << 20

var (
	contextPtrType    = reflect.TypeOf((*Context)(nil))
	requestType       = reflect.TypeOf((*http.Request)(nil))
	modelStateType    = reflect.TypeOf((*ModelState)(nil))
	viewDataType      = reflect.TypeOf((*ViewData)(nil))
	timeType          = reflect.TypeOf(time.Time{})
	textUnmarshalType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Binder resolves Invoke arguments.  It is safe for concurrent use.
type Binder struct {
	validate *validator.Validate
	log      *zap.Logger
}

// NewBinder returns a Binder.  A nil validate gets a fresh validator.
func NewBinder(validate *validator.Validate, log *zap.Logger) *Binder {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Binder{validate: validate, log: log}
}

// Bind returns one value per parameter of m, receiver excluded.
func (b *Binder) Bind(ctx context.Context, c *Context, m *MethodDescriptor) ([]reflect.Value, error) {
	out := make([]reflect.Value, len(m.Params))
	var rv *requestValues

	for i, p := range m.Params {
		fail := func(err error) ([]reflect.Value, error) {
			return nil, &BindError{Widget: c.Descriptor.FullName, Method: m.Name, Param: p.Name, Err: err}
		}

		if arg, ok := c.Arguments[p.Name]; ok {
			v, err := callerValue(arg, p.Type)
			if err != nil {
				return fail(err)
			}
			out[i] = v
			continue
		}

		if v, ok := ambientValue(ctx, c, p.Type); ok {
			out[i] = v
			continue
		}

		if p.Source == SourceServices {
			v, err := serviceValue(c.View.Services, p.Type)
			if err != nil {
				return fail(err)
			}
			out[i] = v
			continue
		}

		if rv == nil {
			var err error
			if rv, err = readRequest(c.Request()); err != nil {
				return fail(err)
			}
		}
		v, bound := b.bindModel(ctx, c, p, rv)
		if !bound {
			v = defaultValue(p.Type)
		}
		out[i] = v
	}
	return out, nil
}

//
// caller, ambient, and service values
//

func callerValue(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil argument for non-nillable %s", t)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("argument has type %s, want %s", v.Type(), t)
	}
	return v, nil
}

func ambientValue(ctx context.Context, c *Context, t reflect.Type) (reflect.Value, bool) {
	switch t {
	case contextType:
		return reflect.ValueOf(&ctx).Elem(), true
	case contextPtrType:
		return reflect.ValueOf(c), true
	case requestType:
		return reflect.ValueOf(c.Request()), true
	case modelStateType:
		return reflect.ValueOf(c.ModelState()), true
	case viewDataType:
		return reflect.ValueOf(c.ViewData()), true
	}
	return reflect.Value{}, false
}

func serviceValue(s Services, t reflect.Type) (reflect.Value, error) {
	if s == nil {
		return reflect.Value{}, fmt.Errorf("no services configured for %s", t)
	}
	svc, ok := s.Resolve(t)
	if !ok || svc == nil {
		return reflect.Value{}, fmt.Errorf("no service registered for %s", t)
	}
	v := reflect.ValueOf(svc)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("service has type %s, want %s", v.Type(), t)
	}
	return v, nil
}

func defaultValue(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return reflect.New(t.Elem())
	}
	return reflect.Zero(t)
}

//
// request values
//

type requestValues struct {
	form   url.Values
	query  url.Values
	route  url.Values
	header http.Header
}

func readRequest(r *http.Request) (*requestValues, error) {
	rv := &requestValues{form: url.Values{}, query: url.Values{}, route: url.Values{}, header: http.Header{}}
	if r == nil {
		return rv, nil
	}
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if r.PostForm != nil {
		rv.form = r.PostForm
	}
	if r.URL != nil {
		rv.query = r.URL.Query()
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		for i, k := range rc.URLParams.Keys {
			if i < len(rc.URLParams.Values) {
				rv.route.Add(k, rc.URLParams.Values[i])
			}
		}
	}
	rv.header = r.Header
	return rv, nil
}

// merged returns the values visible to source, highest precedence last
// applied.
func (rv *requestValues) merged(src Source) url.Values {
	switch src {
	case SourceForm:
		return rv.form
	case SourceQuery:
		return rv.query
	case SourceRoute:
		return rv.route
	case SourceHeader:
		return url.Values(rv.header)
	}
	out := url.Values{}
	for _, layer := range []url.Values{rv.query, rv.route, rv.form} {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// lookup finds key exactly, then case-insensitively.
func lookup(vals url.Values, key string, src Source) ([]string, bool) {
	if src == SourceHeader {
		key = http.CanonicalHeaderKey(key)
	}
	if v, ok := vals[key]; ok && len(v) > 0 {
		return v, true
	}
	for k, v := range vals {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v, true
		}
	}
	return nil, false
}

//
// model binding
//

func isScalar(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType || reflect.PointerTo(t).Implements(textUnmarshalType) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (b *Binder) bindModel(ctx context.Context, c *Context, p Param, rv *requestValues) (reflect.Value, bool) {
	vals := rv.merged(p.Source)
	ms := c.ModelState()

	if isScalar(p.Type) || (p.Type.Kind() == reflect.Slice && isScalar(p.Type.Elem())) {
		raw, ok := lookup(vals, p.Name, p.Source)
		if !ok {
			return reflect.Value{}, false
		}
		var input any = raw[0]
		if p.Type.Kind() == reflect.Slice {
			input = raw
		}
		out := reflect.New(p.Type)
		if err := decode(input, out.Interface(), nil); err != nil {
			ms.AddError(p.Name, fmt.Sprintf("The value %q is not valid.", raw[0]))
			b.log.Debug("widget scalar bind failed", zap.String("param", p.Name), zap.Error(err))
		}
		return out.Elem(), true
	}

	tree := formTree(vals, b.log)
	var input any = tree
	for k, sub := range tree {
		if m, ok := sub.(map[string]any); ok && strings.EqualFold(k, p.Name) {
			input = m
			break
		}
	}

	md := &mapstructure.Metadata{}
	out := reflect.New(p.Type)
	if err := decode(input, out.Interface(), md); err != nil {
		ms.AddError(p.Name, err.Error())
		b.log.Debug("widget model bind failed", zap.String("param", p.Name), zap.Error(err))
	}
	if len(md.Keys) == 0 {
		return reflect.Value{}, false
	}

	v := out.Elem()
	target := v
	if target.Kind() == reflect.Pointer {
		if target.IsNil() {
			return v, true
		}
		target = target.Elem()
	}
	if target.Kind() == reflect.Struct {
		if err := b.validate.StructCtx(ctx, target.Interface()); err != nil {
			ms.addValidation(p.Name, err)
		}
	}
	return v, true
}

func decode(input, result any, md *mapstructure.Metadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			checkboxHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		Metadata:         md,
		Result:           result,
		TagName:          "form",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// checkboxHook maps the browser's "on" to true.
func checkboxHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Bool {
		if s, _ := data.(string); strings.EqualFold(s, "on") {
			return true, nil
		}
	}
	return data, nil
}
