package widget

import (
	"reflect"
	"strings"
	"testing"
)

type lowercaseWidget struct{}

type Thing struct{}

type BoxWidget[T any] struct{ v T }

type ContactCard struct{}

func (ContactCard) WidgetName() string { return "site.Contact" }

type PtrNamed struct{}

func (*PtrNamed) WidgetName() string { return "Plain" }

func TestIsWidget(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[EchoWidget](), true},
		{reflect.TypeFor[*EchoWidget](), true},
		{reflect.TypeFor[lowercaseWidget](), false},
		{reflect.TypeFor[Thing](), false},
		{reflect.TypeFor[BoxWidget[int]](), false},
		{reflect.TypeFor[ContactCard](), true},
		{reflect.TypeFor[PtrNamed](), true},
		{reflect.TypeFor[string](), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsWidget(tc.typ); got != tc.want {
			t.Errorf("IsWidget(%v) = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestNames(t *testing.T) {
	pkg := reflect.TypeFor[EchoWidget]().PkgPath()
	cases := []struct {
		typ         reflect.Type
		short, full string
	}{
		{reflect.TypeFor[*EchoWidget](), "Echo", pkg + ".Echo"},
		{reflect.TypeFor[ContactCard](), "Contact", "site.Contact"},
		{reflect.TypeFor[PtrNamed](), "Plain", "Plain"},
		{reflect.TypeFor[TrailingDotNamed](), "", "site."},
	}
	for _, tc := range cases {
		if got := ShortName(tc.typ); got != tc.short {
			t.Errorf("ShortName(%v) = %q, want %q", tc.typ, got, tc.short)
		}
		if got := FullName(tc.typ); got != tc.full {
			t.Errorf("FullName(%v) = %q, want %q", tc.typ, got, tc.full)
		}
	}
}

func TestDescribe_RequiresUsableShortName(t *testing.T) {
	_, err := Describe(&TrailingDotNamed{})
	if err == nil || !strings.Contains(err.Error(), "invalid widget name") {
		t.Fatalf("err = %v, want invalid widget name", err)
	}
}

func TestLowerFirst(t *testing.T) {
	for in, want := range map[string]string{"ContactModel": "contactModel", "": "", "x": "x", "Émile": "émile"} {
		if got := lowerFirst(in); got != want {
			t.Errorf("lowerFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
