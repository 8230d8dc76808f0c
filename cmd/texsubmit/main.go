package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/texsubmit/cmd/texsubmit/commands"
	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("texsubmit"),
		kong.Description("Package a LaTeX document tree into a submission-ready zip archive."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()})
	serrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
