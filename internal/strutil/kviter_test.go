package strutil

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
)

type strpair struct {
	K, V string
}

func collect(i iter.Seq2[string, string]) (pairs []strpair) {
	for k, v := range i {
		pairs = append(pairs, strpair{k, v})
	}

	return pairs
}

func TestWalkKV(t *testing.T) {
	t.Run("single value", func(t *testing.T) {
		values := collect(WalkKV("abc"))
		require.Equal(t, []strpair{{"abc", ""}}, values)
	})

	t.Run("single pair", func(t *testing.T) {
		values := collect(WalkKV("abc=cba"))
		require.Equal(t, []strpair{{"abc", "cba"}}, values)
	})

	t.Run("multiple pairs with trailing semicolon", func(t *testing.T) {
		values := collect(WalkKV("abc=cba;hello=world;"))
		require.Equal(t, []strpair{{"abc", "cba"}, {"hello", "world"}}, values)
	})

	t.Run("quoted", func(t *testing.T) {
		values := collect(WalkKV(`name="user name"; filename="a;b.txt"`))
		require.Equal(t, []strpair{{"name", "user name"}, {"filename", "a;b.txt"}}, values)
	})

	t.Run("escapes", func(t *testing.T) {
		values := collect(WalkKV(`filename="say \"hi\".txt"`))
		require.Equal(t, []strpair{{"filename", `say "hi".txt`}}, values)
	})

	t.Run("whitespaces around", func(t *testing.T) {
		values := collect(WalkKV("  name = value ;\tother=\"x\"  "))
		require.Equal(t, []strpair{{"name", "value"}, {"other", "x"}}, values)
	})

	t.Run("codings are left intact", func(t *testing.T) {
		values := collect(WalkKV("k%20ey=value%21"))
		require.Equal(t, []strpair{{"k%20ey", "value%21"}}, values)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, tc := range []string{
			`name="unterminated`,
			`name="a"b`,
			`=value`,
			`na me=value`,
			"name=val\x01ue",
		} {
			values := collect(WalkKV(tc))
			require.NotEmpty(t, values, tc)
			require.Equal(t, strpair{}, values[len(values)-1], tc)
		}
	})
}

func TestURLDecode(t *testing.T) {
	decoded, ok := URLDecode("%D0%BF%D1%80%D0%B8%D0%B2%D0%B5%D1%82.txt")
	require.True(t, ok)
	require.Equal(t, "привет.txt", decoded)

	decoded, ok = URLDecode("..%2F..%2Fetc%2Fpasswd")
	require.True(t, ok)
	require.Equal(t, "..%2f..%2fetc%2fpasswd", decoded)

	_, ok = URLDecode("broken%2")
	require.False(t, ok)
	_, ok = URLDecode("broken%zz")
	require.False(t, ok)
}
