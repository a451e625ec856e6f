package foundation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOption(t *testing.T) {
	t.Run("Some", func(t *testing.T) {
		opt := Some("home")
		require.True(t, opt.IsSome())
		require.False(t, opt.IsNone())
		require.Equal(t, "home", opt.Unwrap())
		require.Equal(t, "home", opt.UnwrapOr("default"))
		require.Equal(t, "Some(home)", opt.String())

		v, ok := opt.Get()
		require.True(t, ok)
		require.Equal(t, "home", v)
	})

	t.Run("None", func(t *testing.T) {
		opt := None[string]()
		require.True(t, opt.IsNone())
		require.Equal(t, "default", opt.UnwrapOr("default"))
		require.Nil(t, opt.ToPointer())
		require.Equal(t, "None", opt.String())
		require.Panics(t, func() { opt.Unwrap() })
	})

	t.Run("Pointer round trip", func(t *testing.T) {
		s := "blog"
		require.Equal(t, Some("blog"), FromPointer(&s))
		require.Equal(t, None[string](), FromPointer[string](nil))
		require.Equal(t, "blog", *Some("blog").ToPointer())
	})

	t.Run("Map", func(t *testing.T) {
		length := func(s string) int { return len(s) }
		require.Equal(t, Some(4), MapOption(Some("home"), length))
		require.True(t, MapOption(None[string](), length).IsNone())
	})
}
