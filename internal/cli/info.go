package cli

import (
	"github.com/spf13/cobra"

	"github.com/ZacharyZcR/secextract/internal/pe"
)

// InfoCmd holds the info cmd flags
type InfoCmd struct {
	*GlobalFlags
	env *Env
}

// NewInfoCmd creates a new command
func NewInfoCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	cmd := &InfoCmd{
		GlobalFlags: flags,
		env:         env,
	}
	return &cobra.Command{
		Use:   "info <in_file>",
		Short: "显示COFF头、可选头和头部偏移",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Run(args[0])
		},
	}
}

// Run prints the header summary of inPath followed by its section table.
func (cmd *InfoCmd) Run(inPath string) error {
	in, f, err := openAndParse(cmd.GlobalFlags, cmd.env, inPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := pe.NewAnalyzer(f, in).Analyze()
	if err != nil {
		return err
	}

	reporter := NewReporter(info, cmd.env.Stdout)
	reporter.PrintHeaders()
	reporter.PrintSections()
	return nil
}
