package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/reoring/envschema"
	"github.com/reoring/envschema/i18n"
	"github.com/reoring/envschema/internal/logging"
	"github.com/reoring/envschema/internal/report"
	"github.com/reoring/envschema/internal/watch"
	"github.com/reoring/envschema/source"
)

type options struct {
	Prefix  string
	Schema  string
	EnvFile string
	Debug   bool
	Partial bool
	Indent  int
	Lang    string
	Watch   bool
}

func (o options) validate() error {
	if o.Prefix == "" {
		return errors.New("--prefix is required (or set ENVSCHEMA_PREFIX)")
	}
	if o.Watch && (o.Schema == "" || o.Schema == "-") {
		return errors.New("--watch needs --schema pointing at a file")
	}
	if o.Indent < 0 || o.Indent > 16 {
		return fmt.Errorf("--indent must be between 0 and 16, got %d", o.Indent)
	}
	if o.Lang != "en" && o.Lang != "ja" {
		return fmt.Errorf("--lang must be en or ja, got %q", o.Lang)
	}
	return nil
}

// streams are the process handles run works against; tests substitute buffers.
type streams struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	environ []string
}

// run executes one build, or a build per change in watch mode, and returns the
// process exit code.
func run(ctx context.Context, opts options, s streams) int {
	printer := report.New(s.stderr, opts.Prefix, color.NoColor)
	if err := opts.validate(); err != nil {
		printer.Error(err)
		return 1
	}
	i18n.SetLanguage(opts.Lang)
	log := logging.New(s.stderr, opts.Debug)
	c := &command{opts: opts, s: s, log: log, printer: printer}

	code := c.once()
	if !opts.Watch {
		return code
	}

	files := []string{opts.Schema}
	if opts.EnvFile != "" {
		files = append(files, opts.EnvFile)
	}
	w, err := watch.New(files, 0, log)
	if err != nil {
		printer.Error(err)
		return 1
	}
	log.Info("watching for changes", "files", files)
	if err := w.Run(ctx, func() { code = c.once() }); err != nil {
		printer.Error(err)
		return 1
	}
	return code
}

type command struct {
	opts    options
	s       streams
	log     *slog.Logger
	printer *report.Printer
}

func (c *command) once() int {
	root, err := c.loadSchema()
	if err != nil {
		c.printer.Error(err)
		return 1
	}
	env, err := c.captureEnv()
	if err != nil {
		c.printer.Error(err)
		return 1
	}
	c.log.Debug("captured variables", "prefix", c.opts.Prefix, "count", env.Len())

	res := envschema.Build(root, env, envschema.BuildOptions{Logger: c.log})
	if len(res.Issues) > 0 {
		c.printer.Issues(res.Issues)
		if c.opts.Partial {
			if err := c.write(res); err != nil {
				c.printer.Error(err)
			}
		}
		return 1
	}
	if err := c.write(res); err != nil {
		c.printer.Error(err)
		return 1
	}
	return 0
}

func (c *command) loadSchema() (*envschema.Node, error) {
	var (
		doc any
		err error
	)
	if c.opts.Schema == "" || c.opts.Schema == "-" {
		doc, err = source.Decode(c.s.stdin, source.FormatJSON)
		if err != nil {
			err = fmt.Errorf("read schema from stdin: %w", err)
		}
	} else {
		doc, err = source.ReadFile(c.opts.Schema)
	}
	if err != nil {
		return nil, err
	}
	return envschema.ParseSchema(doc)
}

// captureEnv overlays the process environment on the optional env-file.
func (c *command) captureEnv() (envschema.FlatEnv, error) {
	env := envschema.CaptureEnv(c.opts.Prefix, c.s.environ)
	if c.opts.EnvFile == "" {
		return env, nil
	}
	vars, err := godotenv.Read(c.opts.EnvFile)
	if err != nil {
		return envschema.FlatEnv{}, fmt.Errorf("read env file %s: %w", c.opts.EnvFile, err)
	}
	c.log.Debug("loaded env file", "path", c.opts.EnvFile, "count", len(vars))
	return envschema.CaptureMap(c.opts.Prefix, vars).Merge(env), nil
}

func (c *command) write(res envschema.Result) error {
	var v any
	if res.Present {
		v = res.Value
	}
	data, err := encodeDocument(v, c.opts.Indent)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = c.s.stdout.Write(data)
	return err
}
