package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/darasa/core/school"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errNotConfirmed = errors.New("refusing to clear the store: pass --yes or run on a terminal")
	errAborted      = errors.New("aborted")
)

type commandLine struct {
	svc *school.Service
	in  io.Reader
	out io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "darasa-admin",
		Short:         "Maintenance commands for the persistent Darasa store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.exportCmd(),
		cli.importCmd(),
		cli.clearCmd(),
		cli.diffCmd(),
		cli.importStudentsCmd(),
	)
	return root
}

// run executes the command line; args excludes the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func stdinIsTerminal() bool {
	return isTerminalFunc(int(os.Stdin.Fd()))
}
