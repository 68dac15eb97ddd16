// internal/widget/naming.go
//
// Naming convention for widget types.
//
// A type is a widget when it is an exported, non-generic struct whose name
// ends in "Widget" (any case), or when it implements Namer.  Names are
// derived purely from the type, so every function here is deterministic.
//
//	type ContactFormWidget struct{}     → short "ContactForm"
//	                                      full  "<pkgpath>.ContactForm"
//	func (ContactFormWidget) WidgetName() string { return "site.Contact" }
//	                                    → short "Contact", full "site.Contact"

package widget

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Suffix is the conventional type-name suffix for widgets.
const Suffix = "Widget"

// Namer lets a type opt in as a widget and override its full name.
type Namer interface {
	WidgetName() string
}

var namerType = reflect.TypeOf((*Namer)(nil)).Elem()

// structOf unwraps a pointer type and reports whether the result is a struct.
func structOf(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

// IsWidget applies the convention to t (a struct or pointer-to-struct type).
func IsWidget(t reflect.Type) bool {
	st, ok := structOf(t)
	if !ok {
		return false
	}
	name := st.Name()
	if name == "" || strings.ContainsRune(name, '[') {
		return false // anonymous or generic instantiation
	}
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsUpper(r) {
		return false
	}
	return hasSuffixFold(name, Suffix) || markerName(st) != ""
}

// FullName returns the marker name when present, else "<pkgpath>.<short>".
func FullName(t reflect.Type) string {
	st, _ := structOf(t)
	if n := markerName(st); n != "" {
		return n
	}
	short := ShortName(st)
	if st.PkgPath() == "" {
		return short
	}
	return st.PkgPath() + "." + short
}

// ShortName returns the last segment of the marker name, else the type name
// with the Widget suffix removed.
func ShortName(t reflect.Type) string {
	st, _ := structOf(t)
	if n := markerName(st); n != "" {
		if i := strings.LastIndexByte(n, '.'); i >= 0 {
			return n[i+1:]
		}
		return n
	}
	name := st.Name()
	if len(name) > len(Suffix) && hasSuffixFold(name, Suffix) {
		return name[:len(name)-len(Suffix)]
	}
	return name
}

// markerName calls WidgetName on a zero value when st implements Namer.
func markerName(st reflect.Type) string {
	if st == nil {
		return ""
	}
	switch {
	case st.Implements(namerType):
		return reflect.Zero(st).Interface().(Namer).WidgetName()
	case reflect.PointerTo(st).Implements(namerType):
		return reflect.New(st).Interface().(Namer).WidgetName()
	}
	return ""
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// lowerFirst turns "ContactModel" into "contactModel".
func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
