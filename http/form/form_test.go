package form

import (
	"testing"

	"github.com/indigo-web/formkit/config"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestForm(t *testing.T) {
	t.Run("values and files", func(t *testing.T) {
		f := make(Form)
		require.NoError(t, f.Set("a", "1"))
		file := newTestFile(t, "f.txt", "hello")
		require.NoError(t, f.SetFile("b", file))

		value, found := f.Value("a")
		require.True(t, found)
		require.Equal(t, "1", value)
		_, found = f.Value("b")
		require.False(t, found)

		got, found := f.File("b")
		require.True(t, found)
		require.Same(t, file, got)
		_, found = f.File("a")
		require.False(t, found)
		_, found = f.File("c")
		require.False(t, found)
	})

	t.Run("last write wins", func(t *testing.T) {
		f := make(Form)
		first := newTestFile(t, "first.txt", "1")
		require.NoError(t, f.SetFile("x", first))
		second := newTestFile(t, "second.txt", "2")
		require.NoError(t, f.SetFile("x", second))
		require.NoFileExists(t, first.Path())

		require.NoError(t, f.Set("x", "plain"))
		require.NoFileExists(t, second.Path())
		value, _ := f.Value("x")
		require.Equal(t, "plain", value)
		require.Len(t, f, 1)
	})

	t.Run("setting the same file twice", func(t *testing.T) {
		f := make(Form)
		file := newTestFile(t, "f.txt", "hello")
		require.NoError(t, f.SetFile("x", file))
		require.NoError(t, f.SetFile("x", file))
		require.FileExists(t, file.Path())
	})

	t.Run("ordered iteration", func(t *testing.T) {
		f := make(Form)
		for _, name := range []string{"c", "a", "b"} {
			require.NoError(t, f.Set(name, name))
		}
		require.NoError(t, f.SetFile("d", newTestFile(t, "d.txt", "")))

		var names []string
		for name := range f.Iter() {
			names = append(names, name)
		}
		require.Equal(t, []string{"a", "b", "c", "d"}, names)

		var files []string
		for name, file := range f.Files() {
			files = append(files, name+"="+file.Filename)
		}
		require.Equal(t, []string{"d=d.txt"}, files)
	})

	t.Run("close", func(t *testing.T) {
		f := make(Form)
		a, b := newTestFile(t, "a", "a"), newTestFile(t, "b", "b")
		require.NoError(t, f.SetFile("a", a))
		require.NoError(t, f.SetFile("b", b))
		require.NoError(t, f.Close())
		require.NoFileExists(t, a.Path())
		require.NoFileExists(t, b.Path())
	})
}

func TestManifest(t *testing.T) {
	f := make(Form)
	require.NoError(t, f.Set("a", "1"))
	file := newTestFile(t, "f.txt", "hello")
	require.NoError(t, f.SetFile("b", file))

	manifest := f.Manifest()
	require.Equal(t, Manifest{
		Fields: []FieldInfo{{Name: "a", Value: "1"}},
		Files: []FileInfo{{
			Name:        "b",
			Filename:    "f.txt",
			ContentType: "text/plain",
			Size:        5,
			Path:        file.Path(),
		}},
	}, manifest)

	data, err := manifest.JSON(config.Default().JSON)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"fields": [{"name": "a", "value": "1"}],
		"files": [{
			"name": "b", "filename": "f.txt", "content_type": "text/plain",
			"size": 5, "path": "`+file.Path()+`", "saved": false
		}]
	}`, string(data))

	data, err = manifest.MsgPack()
	require.NoError(t, err)
	var decoded Manifest
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	require.Equal(t, manifest, decoded)

	empty, err := make(Form).Manifest().JSON(config.Default().JSON)
	require.NoError(t, err)
	require.JSONEq(t, `{"fields": [], "files": []}`, string(empty))
}
