package formdata

import (
	"io"
	"strings"
	"testing"

	"github.com/indigo-web/formkit/config"
	"github.com/indigo-web/formkit/http/mime"
	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/transport/dummy"
	"github.com/stretchr/testify/require"
)

// collectEvents merges consecutive file data events, so the result doesn't depend on
// how the input was chunked.
func collectEvents(t *testing.T, p *Parser) ([]Event, error) {
	var events []Event

	for {
		event, err := p.Next()
		switch err {
		case nil:
		case io.EOF:
			require.NotEmpty(t, events)
			require.Equal(t, EventEnd, events[len(events)-1].Kind)
			return events, nil
		default:
			return events, err
		}

		if event.Kind == EventFileData {
			require.NotEmpty(t, event.Data, "empty file data must not be emitted")
			last := &events[len(events)-1]
			if last.Kind == EventFileData {
				last.Data = append(last.Data, event.Data...)
				continue
			}

			event.Data = append([]byte(nil), event.Data...)
		}

		events = append(events, event)
	}
}

func parse(t *testing.T, body string, boundary string, chunkSize int) ([]Event, error) {
	return collectEvents(t, NewParser(dummy.Split([]byte(body), chunkSize), boundary, config.Default()))
}

func TestParser(t *testing.T) {
	t.Run("field and file", func(t *testing.T) {
		want := []Event{
			{Kind: EventField, Name: "a", Value: "1", ContentType: mime.Plain, Charset: mime.UTF8},
			{Kind: EventFile, Name: "b", Filename: "f.txt", ContentType: mime.Plain, Charset: mime.UTF8},
			{Kind: EventFileData, Data: []byte("hello\r\n--XY not yet\r\n-")},
			{Kind: EventField, Name: "empty", ContentType: mime.Plain, Charset: mime.UTF8},
			{Kind: EventEnd},
		}

		for n := 1; n <= len(sampleBody); n++ {
			events, err := parse(t, sampleBody, sampleBoundary, n)
			require.NoError(t, err, n)
			require.Equal(t, want, events, n)
		}
	})

	t.Run("real-world example", func(t *testing.T) {
		data := "------WebKitFormBoundary7MA4YWxkTrZu0gW\r\nContent-Disposition: form-data; " +
			"name=\"username\"\r\n\r\nAlice\r\n------WebKitFormBoundary7MA4YWxkTrZu0gW\r\nCo" +
			"ntent-Disposition: form-data; name=\"profile_pic\"; filename=\"profile.png\"\r\n" +
			"Content-Type: image/png\r\n\r\n[binary file content]\r\n------WebKitFormBoundary7MA4YWxkTrZu0gW--\r\n"
		events, err := parse(t, data, "----WebKitFormBoundary7MA4YWxkTrZu0gW", 16)
		require.NoError(t, err)
		require.Equal(t, []Event{
			{Kind: EventField, Name: "username", Value: "Alice", ContentType: mime.Plain, Charset: mime.UTF8},
			{Kind: EventFile, Name: "profile_pic", Filename: "profile.png", ContentType: mime.PNG, Charset: mime.UTF8},
			{Kind: EventFileData, Data: []byte("[binary file content]")},
			{Kind: EventEnd},
		}, events)
	})

	t.Run("file without content type", func(t *testing.T) {
		data := "--b\r\nContent-Disposition: form-data; name=f; filename=blob.bin\r\n\r\n\x00\x01\x02\r\n--b--\r\n"
		events, err := parse(t, data, "b", 4)
		require.NoError(t, err)
		require.Equal(t, EventFile, events[0].Kind)
		require.Equal(t, mime.OctetStream, events[0].ContentType)
		require.Equal(t, []byte{0, 1, 2}, events[1].Data)
	})

	t.Run("empty file", func(t *testing.T) {
		data := "--b\r\nContent-Disposition: form-data; name=\"f\"; filename=\"\"\r\n" +
			"Content-Type: application/octet-stream\r\n\r\n\r\n--b--\r\n"
		events, err := parse(t, data, "b", 1)
		require.NoError(t, err)
		require.Equal(t, []Event{
			{Kind: EventFile, Name: "f", ContentType: mime.OctetStream, Charset: mime.UTF8},
			{Kind: EventEnd},
		}, events)
	})

	t.Run("charset via Content-Type", func(t *testing.T) {
		data := "--boundary\r\n" +
			"Content-Disposition: form-data; name=username\r\n" +
			"Content-Type: application/octet-stream; charset=cp1252\r\n" +
			"\r\nAlice\r\n--boundary--\r\n"
		events, err := parse(t, data, "boundary", 1024)
		require.NoError(t, err)
		require.Equal(t, Event{
			Kind:        EventField,
			Name:        "username",
			Value:       "Alice",
			ContentType: mime.OctetStream,
			Charset:     mime.CP1252,
		}, events[0])
	})

	t.Run("case-insensitive header names", func(t *testing.T) {
		data := "--b\r\ncontent-disposition: Form-Data; NAME=\"x\"\r\nX-Custom: whatever\r\n\r\n1\r\n--b--\r\n"
		events, err := parse(t, data, "b", 1024)
		require.NoError(t, err)
		require.Equal(t, "x", events[0].Name)
		require.Equal(t, "1", events[0].Value)
	})

	t.Run("extended filename", func(t *testing.T) {
		data := "--b\r\nContent-Disposition: form-data; name=doc; filename=\"fallback.txt\"; " +
			"filename*=UTF-8''%D0%BE%D1%82%D1%87%D0%B5%D1%82.txt\r\n\r\ncontent\r\n--b--\r\n"
		events, err := parse(t, data, "b", 1024)
		require.NoError(t, err)
		require.Equal(t, "отчет.txt", events[0].Filename)
	})

	t.Run("values keep surrounding whitespace", func(t *testing.T) {
		data := "--b\r\nContent-Disposition: form-data; name=x\r\n\r\n  spaced\r\n \r\n--b--\r\n"
		events, err := parse(t, data, "b", 3)
		require.NoError(t, err)
		require.Equal(t, "  spaced\r\n ", events[0].Value)
	})

	t.Run("no parts", func(t *testing.T) {
		for _, data := range []string{"", "--b--\r\n", "--b--"} {
			events, err := parse(t, data, "b", 1)
			require.NoError(t, err)
			require.Equal(t, []Event{{Kind: EventEnd}}, events)
		}
	})

	t.Run("end is emitted once", func(t *testing.T) {
		p := NewParser(dummy.NewMockClient(), "b", config.Default())
		event, err := p.Next()
		require.NoError(t, err)
		require.Equal(t, EventEnd, event.Kind)

		for range 3 {
			_, err = p.Next()
			require.Equal(t, io.EOF, err)
		}
	})
}

func TestParserNegative(t *testing.T) {
	for i, tc := range []string{
		"--boundary\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: form?\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition:\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: form-data; name=\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: form-data;\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: attachment; name=x\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: form-data; name=\"x\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Type: text/plain\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: form-data;\r\n name=x\r\n\r\nAlice\r\n--boundary--\r\n",
		"--boundary\r\nContent-Disposition: form-data; name=x; filename*=%41\r\n\r\nA\r\n--boundary--\r\n",
		"prelude only",
	} {
		_, err := parse(t, tc, "boundary", 5)
		require.ErrorIsf(t, err, status.ErrMalformedPart, "test case %d", i+1)
		require.Equal(t, status.BadRequest, status.CodeOf(err), "test case %d", i+1)
	}

	t.Run("too large field", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.Multipart.MaxFieldSize = 8
		data := "--b\r\nContent-Disposition: form-data; name=x\r\n\r\n" + strings.Repeat("a", 9) + "\r\n--b--\r\n"
		_, err := collectEvents(t, NewParser(dummy.Split([]byte(data), 2), "b", cfg))
		require.ErrorIs(t, err, status.ErrRequestEntityTooLarge)
	})

	t.Run("files are not limited by the field size", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.Multipart.MaxFieldSize = 8
		data := "--b\r\nContent-Disposition: form-data; name=x; filename=y\r\n\r\n" + strings.Repeat("a", 9) + "\r\n--b--\r\n"
		_, err := collectEvents(t, NewParser(dummy.Split([]byte(data), 2), "b", cfg))
		require.NoError(t, err)
	})

	t.Run("too many parts", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.Multipart.MaxParts = 2
		part := "--b\r\nContent-Disposition: form-data; name=x\r\n\r\n1\r\n"
		_, err := collectEvents(t, NewParser(dummy.NewMockClient([]byte(strings.Repeat(part, 3)+"--b--")), "b", cfg))
		require.ErrorIs(t, err, status.ErrTooManyParts)
	})
}

func TestParseHeader(t *testing.T) {
	fields, err := ParseHeader([]byte("Content-Disposition: form-data; name=\"x\"; filename=y.txt\r\n" +
		"Content-Type:text/plain;charset=\"utf8\""))
	require.NoError(t, err)
	require.Len(t, fields, 2)

	disposition, found := fields.Get("content-disposition")
	require.True(t, found)
	require.Equal(t, "form-data", disposition.Value)
	name, _ := disposition.Param("NAME")
	require.Equal(t, "x", name)
	filename, _ := disposition.Param("filename")
	require.Equal(t, "y.txt", filename)

	contentType, found := fields.Get("Content-Type")
	require.True(t, found)
	require.Equal(t, "text/plain", contentType.Value)
	charset, _ := contentType.Param("charset")
	require.Equal(t, "utf8", charset)

	_, found = fields.Get("Content-Length")
	require.False(t, found)
}

func BenchmarkParser(b *testing.B) {
	var body strings.Builder
	for range 20 {
		body.WriteString("--b\r\nContent-Disposition: form-data; name=\"field\"\r\n\r\nsome value\r\n")
	}
	body.WriteString("--b--\r\n")
	client := dummy.Split([]byte(body.String()), 1024)
	cfg := config.Default()

	b.SetBytes(int64(body.Len()))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		client.Reset()
		p := NewParser(client, "b", cfg)
		for {
			if _, err := p.Next(); err != nil {
				break
			}
		}
	}
}
