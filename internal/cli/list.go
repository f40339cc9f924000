package cli

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ZacharyZcR/secextract/internal/pe"
)

// ListCmd holds the list cmd flags
type ListCmd struct {
	*GlobalFlags
	env *Env

	SuspiciousOnly bool
	Entropy        bool
	MinCaveSize    uint32
}

// NewListCmd creates a new command
func NewListCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	cmd := &ListCmd{
		GlobalFlags: flags,
		env:         env,
	}
	listCmd := &cobra.Command{
		Use:   "list <in_file>",
		Short: "列出节区表",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Run(args[0])
		},
	}

	listCmd.Flags().BoolVarP(&cmd.SuspiciousOnly, "suspicious", "s", false, "仅显示可疑节区（RWX权限）")
	listCmd.Flags().BoolVarP(&cmd.Entropy, "entropy", "e", false, "计算每个节区原始数据的熵值")
	listCmd.Flags().Uint32Var(&cmd.MinCaveSize, "caves", 0, "检测至少N字节的Code Caves（0 表示不检测）")
	return listCmd
}

// Run prints the section table of inPath.
func (cmd *ListCmd) Run(inPath string) error {
	in, f, err := openAndParse(cmd.GlobalFlags, cmd.env, inPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	a := pe.NewAnalyzer(f, in)
	a.SetEntropy(cmd.Entropy)
	info, err := a.Analyze()
	if err != nil {
		return err
	}

	reporter := NewReporter(info, cmd.env.Stdout)
	reporter.SetSuspiciousOnly(cmd.SuspiciousOnly)
	reporter.SetEntropy(cmd.Entropy)
	reporter.PrintSections()

	if cmd.MinCaveSize > 0 {
		caves, err := pe.NewCodeCaveDetector(in, f).FindCodeCaves(cmd.MinCaveSize)
		if err != nil {
			return err
		}
		reporter.PrintCodeCaves(caves, cmd.MinCaveSize)
	}
	return nil
}

// openAndParse opens inPath and parses its headers.
func openAndParse(flags *GlobalFlags, env *Env, inPath string) (afero.File, *pe.File, error) {
	in, err := openInput(env.Fs, inPath)
	if err != nil {
		return nil, nil, err
	}

	f, err := pe.NewParser(pe.WithLogger(flags.NewLogger(env.Stderr))).Parse(in)
	if err != nil {
		_ = in.Close()
		return nil, nil, err
	}
	return in, f, nil
}
