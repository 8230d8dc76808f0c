package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/texsubmit/internal/config"
	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(root.configPath(), i.Force, os.Stdout)
}

// RunInit writes an example configuration file.
func RunInit(configPath string, force bool, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return serrors.Wrap(err, serrors.CategoryConfig, serrors.SeverityFatal, err.Error())
	}
	_, _ = fmt.Fprintln(w, "initialized successfully")
	return nil
}
