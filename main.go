package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ardanlabs/cheddar/config"
	"github.com/ardanlabs/cheddar/generator"
	"github.com/ardanlabs/cheddar/logger"
	"github.com/ardanlabs/cheddar/parser"
	"github.com/ardanlabs/cheddar/watcher"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "cheddar",
		Usage:     "Generate a C header for the exported items of a source file",
		ArgsUsage: "<source file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Header file to write (default: standard output)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Header name used for the include guard (default: source file stem)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail on the first item that can not be translated",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Regenerate the header whenever the source file changes",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowAppHelp(c)
	}
	source := c.Args().First()

	cfg, err := loadConfig(c, source)
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	if cfg.LogLevel != "" {
		logCfg.Level = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	if c.Bool("verbose") {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	if !c.Bool("watch") {
		return generate(cfg, source)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Watching source", "file", source)
	return watcher.Run(ctx, source, func() error { return generate(cfg, source) })
}

func loadConfig(c *cli.Context, source string) (*config.Config, error) {
	cfg := config.Default(source)
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path, source); err != nil {
			return nil, err
		}
	}

	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("name") {
		cfg.Name = c.String("name")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}

	return cfg, nil
}

func generate(cfg *config.Config, source string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	file, err := parser.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parsing source: %w", err)
	}

	gen := generator.New(cfg, file)

	header, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("generating header: %w", err)
	}

	if cfg.Output == "" {
		_, err := fmt.Fprint(os.Stdout, header)
		return err
	}

	if err := os.WriteFile(cfg.Output, []byte(header), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output, err)
	}
	logger.LogHeaderWritten(cfg.Output, gen.DeclarationCount())

	return nil
}
