package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ZacharyHenkel/ifc/internal/enlistment"
	"github.com/ZacharyHenkel/ifc/internal/logger"
	"github.com/ZacharyHenkel/ifc/internal/version"
)

func main() {
	app := &cli.Command{
		Name:      "ifc4enlistment",
		Usage:     "Rebase enlistment source paths inside IFC files onto the build-cache layout",
		ArgsUsage: "<ifc-file> [<ifc-file> ...]",
		Version:   version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rules",
				Usage: "YAML `FILE` overriding the default rewrite rules",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "write a JSON processing report to `FILE`",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "text, json or pretty",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		_ = cli.ShowAppHelp(cmd)
		return cli.Exit("specify the path of at least one ifc file", 1)
	}

	rules, err := enlistment.LoadRules(cmd.String("rules"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	proc := &enlistment.Processor{
		Rules: rules,
		Log:   buildLogger(cmd.String("log-format"), cmd.String("log-level")),
	}
	rep := proc.Run(files)

	if out := cmd.String("report"); out != "" {
		if err := rep.WriteJSON(out); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	if rep.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", rep.Failed, len(rep.Files)), 1)
	}
	return nil
}

func buildLogger(format, level string) logger.Logger {
	lvl := logger.ParseLevel(level)
	switch format {
	case "json":
		return logger.JSON(os.Stderr, lvl)
	case "pretty":
		return logger.Pretty(os.Stderr, lvl)
	default:
		return logger.Text(os.Stderr, lvl)
	}
}
