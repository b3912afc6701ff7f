package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/open-source-firmware/go-tcg-drive/pkg/cmdutil"
)

const (
	programName = "gosedctl"
	programDesc = "Go SED control"
)

func main() {
	// Parse kong flags and sub-commands
	ctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.Resolvers(cmdutil.ResolvePassword(false)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	env, err := cli.Setup()
	ctx.FatalIfErrorf(err)

	// Run the command
	if err := ctx.Run(&context{Env: env}); err != nil {
		env.Log.Error(err)
		os.Exit(cmdutil.ExitCode(err))
	}
}
