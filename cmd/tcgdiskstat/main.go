package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/open-source-firmware/go-tcg-drive/pkg/cmdutil"
	"github.com/open-source-firmware/go-tcg-drive/pkg/scan"
)

var cli struct {
	cmdutil.Globals `embed:""`

	Output   string `short:"o" default:"table" enum:"table,json,openmetrics" help:"Output format; one of [table, json, openmetrics]"`
	NoHeader bool   `help:"Supress the header in table format output"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("tcgdiskstat"),
		kong.Description("Report the TCG storage state of all drives.\n\n"+scan.StateFlagsHelp),
		kong.UsageOnError())

	env, err := cli.Setup()
	ctx.FatalIfErrorf(err)

	r, err := scan.Scan(env.Factory, env.Log)
	if err != nil {
		env.Log.Errorf("Failed to enumerate drives: %v", err)
		os.Exit(cmdutil.ExitCode(err))
	}

	switch cli.Output {
	case "json":
		err = scan.WriteJSON(os.Stdout, r)
	case "openmetrics":
		err = scan.WriteMetrics(os.Stdout, r)
	default:
		err = scan.WriteStatus(os.Stdout, r, !cli.NoHeader)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s output: %v\n", cli.Output, err)
		os.Exit(1)
	}
}
