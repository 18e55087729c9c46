// Command finctl is the terminal client of the finance dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"finance-dashboard/internal/cli"
	"finance-dashboard/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: ./config.yaml if present).")
	verbose := flag.Bool("v", false, "Log debug output to stderr.")

	env := &cli.Env{Out: os.Stdout, Err: os.Stderr, In: os.Stdin}
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, env)

	flag.Parse()
	env.ConfigPath = *configPath
	level := "warn"
	if *verbose {
		level = "debug"
	}
	env.Logger = logger.Setup(level, "console")

	os.Exit(int(commander.Execute(context.Background())))
}
