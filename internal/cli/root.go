package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Env is what commands read from and write to.
type Env struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultEnv uses the OS filesystem and standard streams.
func DefaultEnv() *Env {
	return &Env{
		Fs:     afero.NewOsFs(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// NewRootCmd returns a new root command
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "secextract",
		Short:         "PE文件节区提取工具",
		Long:          "secextract 解析PE文件的COFF头、可选头和节区表，并将指定节区的原始数据写入输出文件。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// BuildRoot creates the root command with all subcommands attached.
func BuildRoot(env *Env) *cobra.Command {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(env.Stdout)
	rootCmd.SetErr(env.Stderr)

	globalFlags := SetGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if globalFlags.NoColor {
			color.NoColor = true
		}
	}

	rootCmd.AddCommand(NewExtractCmd(globalFlags, env))
	rootCmd.AddCommand(NewListCmd(globalFlags, env))
	rootCmd.AddCommand(NewInfoCmd(globalFlags, env))
	return rootCmd
}

// Run executes the command line in args and returns the process exit code.
func Run(env *Env, args []string) int {
	rootCmd := BuildRoot(env)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err != nil {
		red := color.New(color.FgRed, color.Bold)
		_, _ = red.Fprintf(env.Stderr, "\n错误: %v\n\n", err)
	}
	return ExitCode(err)
}

// openInput opens a PE file for reading.
func openInput(fs afero.Fs, path string) (afero.File, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &ExitError{
			Code: ExitInputPath,
			Err:  fmt.Errorf("无法打开输入文件 (第一个参数必须是可读文件): %w", err),
		}
	}
	return f, nil
}
