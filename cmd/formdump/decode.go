package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/indigo-web/formkit/config"
	"github.com/indigo-web/formkit/http"
	"github.com/indigo-web/formkit/http/codec"
	"github.com/indigo-web/formkit/http/form"
	"github.com/indigo-web/formkit/http/mime"
	"github.com/indigo-web/formkit/http/multipart"
	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/internal/logging"
	"github.com/indigo-web/formkit/storage"
	"github.com/indigo-web/formkit/transport"
)

const (
	formatJSON    = "json"
	formatMsgPack = "msgpack"
)

type decodeOptions struct {
	Boundary   string
	ChunkSize  int
	Chunked    bool
	Encoding   string
	ConfigPath string
	Format     string
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a raw multipart/form-data body and print its manifest",
		ArgsUsage: "FILE|-",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "boundary",
				Aliases: []string{"b"},
				Usage:   "Multipart boundary (sniffed from the first delimiter if omitted)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Size of pieces the body is fed to the decoder in",
				Value: 4096,
			},
			&cli.BoolFlag{
				Name:  "chunked",
				Usage: "The body is encoded with the chunked transfer coding",
			},
			&cli.StringFlag{
				Name:    "encoding",
				Aliases: []string{"e"},
				Usage:   "Content-Encoding of the body, e.g. gzip or \"gzip, zstd\"",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, msgpack",
				Value:   formatJSON,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Save uploaded files into the directory",
			},
			&cli.StringFlag{
				Name:  "s3-bucket",
				Usage: "Upload files into the S3 bucket",
			},
			&cli.StringFlag{
				Name:  "s3-prefix",
				Usage: "Key prefix within the S3 bucket",
			},
			&cli.StringFlag{
				Name:    "s3-region",
				Usage:   "AWS region",
				EnvVars: []string{"AWS_REGION"},
			},
			&cli.StringFlag{
				Name:  "s3-endpoint",
				Usage: "Custom S3 endpoint for S3-compatible providers",
			},
			&cli.BoolFlag{
				Name:  "s3-path-style",
				Usage: "Force path-style addressing",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug messages",
			},
		},
		Action: decodeAction,
	}
}

func decodeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one input is expected, use - for stdin", exitUsage)
	}

	opts := decodeOptions{
		Boundary:   c.String("boundary"),
		ChunkSize:  c.Int("chunk-size"),
		Chunked:    c.Bool("chunked"),
		Encoding:   c.String("encoding"),
		ConfigPath: c.String("config"),
		Format:     c.String("format"),
	}
	if err := opts.validate(); err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	if c.IsSet("out") && c.IsSet("s3-bucket") {
		return cli.Exit("--out and --s3-bucket are mutually exclusive", exitUsage)
	}

	logger := logging.New(c.App.ErrWriter, c.Bool("verbose"))
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	var sink storage.Sink
	switch {
	case c.IsSet("out"):
		dir, err := storage.NewDir(c.String("out"))
		if err != nil {
			return cli.Exit(err.Error(), exitInternal)
		}
		sink = dir
	case c.IsSet("s3-bucket"):
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:       c.String("s3-bucket"),
			Prefix:       c.String("s3-prefix"),
			Region:       c.String("s3-region"),
			Endpoint:     c.String("s3-endpoint"),
			UsePathStyle: c.Bool("s3-path-style"),
		})
		if err != nil {
			return cli.Exit(err.Error(), exitInternal)
		}
		sink = s3
	}

	in := c.App.Reader
	if path := c.Args().First(); path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return cli.Exit(err.Error(), exitInternal)
		}
		defer file.Close()
		in = file
	}

	if err := runDecode(ctx, opts, in, c.App.Writer, logger, sink); err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}

	return nil
}

func (o decodeOptions) validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.ChunkSize)
	}

	switch o.Format {
	case formatJSON, formatMsgPack:
	default:
		return fmt.Errorf("unknown format %q", o.Format)
	}

	for token := range strings.SplitSeq(o.Encoding, ",") {
		if token = strings.TrimSpace(token); len(token) == 0 || strings.EqualFold(token, "identity") {
			continue
		}
		if _, found := codec.Lookup(token); !found {
			return fmt.Errorf("unsupported encoding %q", token)
		}
	}

	if len(o.Boundary) > 0 {
		return multipart.ValidateBoundary(o.Boundary)
	}

	return nil
}

func isIdentity(encoding string) bool {
	for token := range strings.SplitSeq(encoding, ",") {
		if token = strings.TrimSpace(token); len(token) > 0 && !strings.EqualFold(token, "identity") {
			return false
		}
	}

	return true
}

func exitCode(err error) int {
	if code := status.CodeOf(err); code >= 400 && code < 500 {
		return exitMalformed
	}

	return exitInternal
}

func runDecode(
	ctx context.Context, opts decodeOptions, in io.Reader, out io.Writer, logger *zap.Logger, sink storage.Sink,
) error {
	cfg := config.Default()
	if len(opts.ConfigPath) > 0 {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return err
		}
	}
	cfg.Logger = logging.NewPrintf(logger)

	reader := transport.NewReader(in, opts.ChunkSize)
	var src transport.Retriever = reader
	if opts.Chunked {
		src = transport.NewChunked(reader, false)
	}

	boundary := opts.Boundary
	if len(boundary) == 0 {
		if opts.Chunked || !isIdentity(opts.Encoding) {
			return fmt.Errorf("--boundary is required for encoded bodies: %w", status.ErrBadBoundary)
		}

		var err error
		if boundary, err = sniffBoundary(reader, cfg.Body.Multipart.MaxHeaderSize); err != nil {
			return err
		}

		logger.Debug("boundary sniffed", zap.String("boundary", boundary))
	}

	src, err := codec.Decode(opts.Encoding, src, cfg.Body.Multipart.ReadBufferSize)
	if err != nil {
		return err
	}

	body := http.NewBody(src, mime.Multipart+"; boundary=\""+boundary+"\"", cfg)
	f, err := body.Multipart(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("failed to release spooled files", zap.Error(err))
		}
	}()

	if sink != nil {
		if err = persist(ctx, f, sink, logger); err != nil {
			return err
		}
	}

	manifest := f.Manifest()
	var encoded []byte
	switch opts.Format {
	case formatMsgPack:
		encoded, err = manifest.MsgPack()
	default:
		encoded, err = manifest.JSON(cfg.JSON)
		encoded = append(encoded, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if _, err = out.Write(encoded); err != nil {
		return err
	}

	logger.Info("form decoded",
		zap.String("boundary", boundary),
		zap.Int("fields", len(manifest.Fields)),
		zap.Int("files", len(manifest.Files)),
	)

	return nil
}

// sniffBoundary reads the body until the opening delimiter line is complete, but no more than
// limit bytes. Everything read is pushed back, so the decoder sees the body from its start.
func sniffBoundary(reader *transport.Reader, limit int) (string, error) {
	var head []byte

	for {
		data, err := reader.Retrieve()
		head = append(head, data...)
		if boundary, found := multipart.SniffBoundary(head); found {
			reader.Pushback(head)
			return boundary, nil
		}

		switch {
		case err == io.EOF, err == nil && len(head) >= limit:
			return "", fmt.Errorf("no boundary in the first %d bytes, pass --boundary: %w", len(head), status.ErrBadBoundary)
		case err != nil:
			return "", err
		}
	}
}

func persist(ctx context.Context, f form.Form, sink storage.Sink, logger *zap.Logger) error {
	var errs []error

	for name, file := range f.Files() {
		key := name
		if len(file.Filename) > 0 {
			key += "/" + file.Filename
		}

		if err := sink.Put(ctx, key, file); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		logger.Debug("file stored",
			zap.String("field", name),
			zap.String("key", key),
			zap.Int64("size", file.Size()),
		)
	}

	return errors.Join(errs...)
}
