package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ava1ar/zfs-send-receive/config"
	"github.com/ava1ar/zfs-send-receive/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "zfs-send-receive: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "zfs-send-receive",
		Usage: "replicate a zfs dataset to a remote host",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "source dataset", Required: true},
			&cli.StringFlag{Name: "dest", Aliases: []string{"d"}, Usage: "destination dataset", Required: true},
			&cli.StringFlag{Name: "remote", Aliases: []string{"r"}, Usage: "destination host", Required: true},
			&cli.StringFlag{Name: "transport", Aliases: []string{"t"}, Usage: "transport: ssh or nc", Required: true},
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"R"}, Usage: "send the dataset and its descendants"},
			&cli.BoolFlag{Name: "properties", Aliases: []string{"p"}, Usage: "include dataset properties in the stream"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"F"}, Usage: "force rollback of the destination on receive"},
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "pass the no-op flag to every mutating call"},
			&cli.BoolFlag{Name: "v", Usage: "verbose receive and destroy"},
			&cli.BoolFlag{Name: "vv", Usage: "verbose send as well"},
			&cli.StringFlag{Name: "config", Usage: "config file path"},
			&cli.StringFlag{Name: "log-file", Usage: "also log to a size-rotated file"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	conf, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	conf.Source = c.String("source")
	conf.Dest = c.String("dest")
	conf.Remote = c.String("remote")
	conf.Transport = c.String("transport")
	conf.Recursive = c.Bool("recursive")
	conf.Properties = c.Bool("properties")
	conf.Force = c.Bool("force")
	conf.DryRun = c.Bool("dry-run")
	switch {
	case c.Bool("vv"):
		conf.Verbose = 2
	case c.Bool("v"):
		conf.Verbose = 1
	}
	if path := c.String("log-file"); path != "" {
		conf.LogFile = path
	}

	if conf.LogFile != "" {
		logger.LogToFile(conf.LogFile)
	}

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	r, err := NewReplicator(conf)
	if err != nil {
		return err
	}
	return r.Run(NewSigctx())
}
