package widget

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type AlphaCard struct{}

func (AlphaCard) WidgetName() string { return "alpha.Card" }
func (*AlphaCard) Invoke() string    { return "alpha" }

type BetaCard struct{}

func (BetaCard) WidgetName() string { return "beta.Card" }
func (*BetaCard) Invoke() string    { return "beta" }

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	d1, err := reg.Register(&EchoWidget{})
	require.NoError(t, err)
	d2, err := reg.Register(EchoWidget{})
	require.NoError(t, err)
	require.Same(t, d1, d2)
	require.Len(t, reg.Collection().Items, 1)

	got, ok := reg.Lookup(reflect.TypeFor[*EchoWidget]())
	require.True(t, ok)
	require.Same(t, d1, got)
	require.NotEmpty(t, d1.ID)
}

func TestRegistry_CollectionVersion(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(&EchoWidget{})
	require.NoError(t, err)

	first := reg.Collection()
	require.Same(t, first, reg.Collection())

	_, err = reg.Register(&StepsWidget{})
	require.NoError(t, err)
	second := reg.Collection()
	require.Greater(t, second.Version, first.Version)
	require.Len(t, second.Items, 2)
	require.Len(t, first.Items, 1)
}

func TestRegistry_RegisterPanicsOnBadWidget(t *testing.T) {
	saved := Default
	Default = NewRegistry()
	defer func() { Default = saved }()

	require.Panics(t, func() { Register(&ConflictWidget{}) })
	require.NotPanics(t, func() { Register(&EchoWidget{}) })
}

func TestSelector(t *testing.T) {
	reg := NewRegistry()
	for _, p := range []any{&EchoWidget{}, &AlphaCard{}, &BetaCard{}} {
		_, err := reg.Register(p)
		require.NoError(t, err)
	}
	s := NewSelector(reg)

	d, err := s.Select("Echo")
	require.NoError(t, err)
	require.Equal(t, "Echo", d.ShortName)

	d, err = s.Select(FullName(reflect.TypeFor[EchoWidget]()))
	require.NoError(t, err)
	require.Equal(t, "Echo", d.ShortName)

	_, err = s.Select("echo")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = s.Select("Card")
	var amb *AmbiguousWidgetError
	require.True(t, errors.As(err, &amb))
	require.Len(t, amb.Matches, 2)
	require.Contains(t, amb.Error(), "alpha.Card")

	d, err = s.Select("beta.Card")
	require.NoError(t, err)
	require.Equal(t, "Card", d.ShortName)

	_, err = s.SelectType(reflect.TypeFor[StepsWidget]())
	require.True(t, errors.As(err, &nf))
}

func TestSelector_SeesLaterRegistrations(t *testing.T) {
	reg := NewRegistry()
	s := NewSelector(reg)
	_, err := s.Select("Steps")
	require.Error(t, err)

	_, err = reg.Register(&StepsWidget{})
	require.NoError(t, err)
	_, err = s.Select("Steps")
	require.NoError(t, err)
}
