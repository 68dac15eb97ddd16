// internal/widget/method.go
//
// Method descriptor builder.
//
// Context
// -------
// Every exported method named Invoke[State][Get|Post][Async] is a candidate
// handler.  Names are parsed right to left by an ordered table of suffix
// stages; each stage strips at most one suffix and whatever survives all
// stages is the state token.
//
//	InvokeAsync              → verb Any,  state "",         async
//	InvokePost               → verb Post, state "",         sync
//	InvokeQuestionPostAsync  → verb Post, state "Question", async
//
// Signatures are checked here, once, so the invoker never meets a method it
// cannot call.
//
// Notes
// -----
//   • Suffix matching is case-sensitive, so "InvokeForget" is state "Forget".
//   • Methods promoted from embedded fields are ignored; a method the type
//     declares itself is kept even when it shadows an embedded one.

package widget

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

const methodPrefix = "Invoke"

// Verb is the HTTP verb a method answers to.
type Verb int

const (
	VerbAny Verb = iota
	VerbGet
	VerbPost
)

func (v Verb) String() string {
	switch v {
	case VerbGet:
		return "Get"
	case VerbPost:
		return "Post"
	default:
		return "Any"
	}
}

// Source restricts where the binder looks for a parameter value.
type Source int

const (
	SourceAuto Source = iota // form, then route, then query
	SourceForm
	SourceQuery
	SourceRoute
	SourceHeader
	SourceServices
)

var sourceNames = map[string]Source{
	"form":     SourceForm,
	"query":    SourceQuery,
	"route":    SourceRoute,
	"header":   SourceHeader,
	"services": SourceServices,
}

// Param is one formal parameter of an Invoke method (receiver excluded).
type Param struct {
	Name   string
	Type   reflect.Type
	Source Source
}

// MethodDescriptor is the parsed, validated form of one Invoke method.
type MethodDescriptor struct {
	Name   string
	Verb   Verb
	State  string
	Async  bool
	Rank   int
	Params []Param

	fn         reflect.Value // method expression; receiver is the first argument
	returnsErr bool
}

// ParamNamer supplies parameter names and sources, which reflection cannot
// see.  Each spec is "name" or "name,source"; an empty spec keeps the
// default name.
type ParamNamer interface {
	WidgetParams(method string) []string
}

//
// name grammar
//

type parsedName struct {
	state    string
	verb     Verb
	async    bool
	hasVerb  bool
	hasState bool
}

type suffixRule struct {
	suffix string
	apply  func(*parsedName)
}

// suffixStages is applied in order; at most one rule per stage matches.
var suffixStages = [][]suffixRule{
	{
		{"Async", func(p *parsedName) { p.async = true }},
	},
	{
		{"Get", func(p *parsedName) { p.verb, p.hasVerb = VerbGet, true }},
		{"Post", func(p *parsedName) { p.verb, p.hasVerb = VerbPost, true }},
	},
}

// parseMethodName returns ok=false for names outside the grammar.
func parseMethodName(name string) (parsedName, bool, error) {
	if !strings.HasPrefix(name, methodPrefix) {
		return parsedName{}, false, nil
	}
	rest := name[len(methodPrefix):]
	var p parsedName
	for _, stage := range suffixStages {
		for _, rule := range stage {
			if strings.HasSuffix(rest, rule.suffix) {
				rest = rest[:len(rest)-len(rule.suffix)]
				rule.apply(&p)
				break
			}
		}
	}
	if rest == "Get" || rest == "Post" {
		return p, true, fmt.Errorf("state %q collides with a verb name", rest)
	}
	p.state = rest
	p.hasState = rest != ""
	return p, true, nil
}

// MethodName rebuilds the method name for a (state, verb, async) triple.
func MethodName(state string, verb Verb, async bool) string {
	var b strings.Builder
	b.WriteString(methodPrefix)
	b.WriteString(state)
	if verb != VerbAny {
		b.WriteString(verb.String())
	}
	if async {
		b.WriteString("Async")
	}
	return b.String()
}

func rank(p parsedName) int {
	r := 1
	if p.hasVerb {
		r++
	}
	if p.hasState {
		r += 2
	}
	return r
}

//
// discovery
//

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

type methodKey struct {
	state string
	verb  Verb
}

// describeMethods scans the pointer method set of st.
func describeMethods(st reflect.Type) ([]*MethodDescriptor, error) {
	pt := reflect.PointerTo(st)
	promoted := promotedNames(st)

	var namer ParamNamer
	if n, ok := reflect.New(st).Interface().(ParamNamer); ok {
		namer = n
	}

	var out []*MethodDescriptor
	seen := map[methodKey]*MethodDescriptor{}

	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if promoted[m.Name] {
			continue
		}
		p, ok, err := parseMethodName(m.Name)
		if !ok {
			continue
		}
		if err != nil {
			return nil, &SignatureError{Method: m.Name, Reason: err.Error()}
		}

		md := &MethodDescriptor{
			Name:  m.Name,
			Verb:  p.verb,
			State: p.state,
			Async: p.async,
			Rank:  rank(p),
			fn:    m.Func,
		}
		if err := checkSignature(md, m.Type); err != nil {
			return nil, err
		}
		var specs []string
		if namer != nil {
			specs = namer.WidgetParams(m.Name)
		}
		params, err := describeParams(m.Name, m.Type, specs)
		if err != nil {
			return nil, err
		}
		md.Params = params

		key := methodKey{md.State, md.Verb}
		if prev, dup := seen[key]; dup {
			return nil, &MethodConflictError{First: prev.Name, Second: md.Name, State: md.State, Verb: md.Verb}
		}
		seen[key] = md
		out = append(out, md)
	}
	return out, nil
}

// checkSignature validates the return contract.  ft includes the receiver.
func checkSignature(md *MethodDescriptor, ft reflect.Type) error {
	bad := func(format string, a ...any) error {
		return &SignatureError{Method: md.Name, Reason: fmt.Sprintf(format, a...)}
	}

	takesCtx := false
	for i := 1; i < ft.NumIn(); i++ {
		if ft.In(i) == contextType {
			if md.Async && i != 1 {
				return bad("context.Context must be the first parameter")
			}
			takesCtx = true
		}
	}

	if md.Async {
		if !takesCtx {
			return bad("async methods must take context.Context as their first parameter")
		}
		if ft.NumOut() != 2 || ft.Out(1) != errorType {
			return bad("async methods must return (value, error)")
		}
		if ft.Out(0) == errorType {
			return bad("async methods must produce a value, not only an error")
		}
	} else {
		if takesCtx {
			return bad("context.Context parameters are reserved for methods with the Async suffix")
		}
		switch ft.NumOut() {
		case 0:
			return bad("sync methods must return a value")
		case 1:
			if ft.Out(0) == errorType {
				return bad("sync methods must return a value, not only an error")
			}
		case 2:
			if ft.Out(1) != errorType || ft.Out(0) == errorType {
				return bad("sync methods must return (value) or (value, error)")
			}
		default:
			return bad("too many return values")
		}
	}

	switch ft.Out(0).Kind() {
	case reflect.Chan, reflect.Func:
		return bad("cannot return %s; return the value itself", ft.Out(0))
	}
	md.returnsErr = ft.NumOut() == 2
	return nil
}

func describeParams(method string, ft reflect.Type, specs []string) ([]Param, error) {
	n := ft.NumIn() - 1
	if len(specs) > n {
		return nil, &SignatureError{Method: method,
			Reason: fmt.Sprintf("%d parameter names given for %d parameters", len(specs), n)}
	}
	params := make([]Param, n)
	for i := 0; i < n; i++ {
		t := ft.In(i + 1)
		p := Param{Name: defaultParamName(t, i), Type: t}
		if i < len(specs) && specs[i] != "" {
			name, src, _ := strings.Cut(specs[i], ",")
			if name = strings.TrimSpace(name); name != "" {
				p.Name = name
			}
			if src = strings.TrimSpace(src); src != "" {
				s, ok := sourceNames[strings.ToLower(src)]
				if !ok {
					return nil, &SignatureError{Method: method, Reason: fmt.Sprintf("unknown binding source %q", src)}
				}
				p.Source = s
			}
		}
		params[i] = p
	}
	return params, nil
}

// defaultParamName uses the lower-camel type name for named types.
func defaultParamName(t reflect.Type, i int) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return lowerFirst(t.Name())
	}
	return "arg" + strconv.Itoa(i)
}

// promotedNames lists the methods st inherits from embedded fields.  A
// name that st declares itself shadows the embedded method and is not
// listed.
func promotedNames(st reflect.Type) map[string]bool {
	out := map[string]bool{}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() != reflect.Pointer && ft.Kind() != reflect.Interface {
			ft = reflect.PointerTo(ft)
		}
		for j := 0; j < ft.NumMethod(); j++ {
			out[ft.Method(j).Name] = true
		}
	}
	for name := range out {
		if declares(st, name) {
			delete(out, name)
		}
	}
	return out
}

// declares reports whether st has its own method called name, on either
// receiver.  Promoted methods and the pointer forms of value methods are
// compiler wrappers with no source position.
func declares(st reflect.Type, name string) bool {
	for _, t := range []reflect.Type{st, reflect.PointerTo(st)} {
		if m, ok := t.MethodByName(name); ok && !generated(m.Func) {
			return true
		}
	}
	return false
}

func generated(fn reflect.Value) bool {
	pc := fn.Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return true
	}
	file, _ := f.FileLine(pc)
	return file == "<autogenerated>"
}

// MethodInfo is the serialisable summary of a MethodDescriptor.
type MethodInfo struct {
	Name  string
	State string
	Verb  Verb
	Async bool
	Rank  int
}
