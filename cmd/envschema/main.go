package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deepnoodle-ai/wonton/cli"

	"github.com/reoring/envschema/internal/config"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := 0
	app := cli.New("envschema").
		Description("Build a JSON document from environment variables described by a JSON Schema").
		Version(version)

	app.Main().
		Flags(
			cli.String("prefix", "p").
				Default(cfg.Prefix).
				Help("Prefix of the variables to read, e.g. APP_ (ENVSCHEMA_PREFIX)"),
			cli.String("schema", "s").
				Default(cfg.Schema).
				Help("Schema file, JSON or YAML by extension; reads JSON from stdin when empty"),
			cli.Bool("debug", "d").
				Default(cfg.Debug).
				Help("Log every lookup and coercion to stderr"),
			cli.String("env-file", "").
				Default(cfg.EnvFile).
				Help("Also read variables from a dotenv file; the process environment wins"),
			cli.Bool("partial", "").
				Default(cfg.Partial).
				Help("Print the partial document even when there are issues"),
			cli.Int("indent", "").
				Default(cfg.Indent).
				Help("Indentation width of the output; 0 prints compact JSON"),
			cli.String("lang", "").
				Default(cfg.Lang).
				Help("Language of diagnostics (en or ja)"),
			cli.Bool("watch", "w").
				Default(false).
				Help("Rebuild whenever the schema or env file changes"),
		).
		Run(func(c *cli.Context) error {
			opts := options{
				Prefix:  c.String("prefix"),
				Schema:  c.String("schema"),
				EnvFile: c.String("env-file"),
				Debug:   c.Bool("debug"),
				Partial: c.Bool("partial"),
				Indent:  c.Int("indent"),
				Lang:    c.String("lang"),
				Watch:   c.Bool("watch"),
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			code = run(ctx, opts, streams{
				stdin:   os.Stdin,
				stdout:  os.Stdout,
				stderr:  os.Stderr,
				environ: os.Environ(),
			})
			return nil
		})

	if err := app.Execute(); err != nil {
		if cli.IsHelpRequested(err) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
	os.Exit(code)
}
