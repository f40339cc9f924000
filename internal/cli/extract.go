package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ZacharyZcR/secextract/internal/pe"
)

// ExtractCmd holds the extract cmd flags
type ExtractCmd struct {
	*GlobalFlags
	env *Env

	MaxSize string
}

// NewExtractCmd creates a new command
func NewExtractCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	cmd := &ExtractCmd{
		GlobalFlags: flags,
		env:         env,
	}
	extractCmd := &cobra.Command{
		Use:   "extract <in_file> <section_name> <out_file>",
		Short: "将节区的原始数据写入文件",
		Example: `  secextract extract program.exe .text text.bin
  secextract extract --max-size 16MiB program.exe .rsrc rsrc.bin`,
		Args: exactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Run(args[0], args[1], args[2])
		},
	}

	extractCmd.Flags().StringVar(&cmd.MaxSize, "max-size", "0", "允许提取的最大节区大小 (例如 64MiB, 0 表示不限制)")
	return extractCmd
}

// Run parses inPath, resolves the section and writes its raw data to
// outPath. The output file is only created once the section is known to
// exist.
func (cmd *ExtractCmd) Run(inPath, section, outPath string) error {
	maxSize, err := humanize.ParseBytes(cmd.MaxSize)
	if err != nil {
		return &ExitError{Code: ExitWrongArgs, Err: fmt.Errorf("无效的 --max-size: %w", err)}
	}

	log := cmd.NewLogger(cmd.env.Stderr)
	fs := cmd.env.Fs

	in, err := openInput(fs, inPath)
	if err != nil {
		return err
	}
	inClosed := false
	defer func() {
		if !inClosed {
			_ = in.Close()
		}
	}()

	f, err := pe.NewParser(pe.WithLogger(log)).Parse(in)
	if err != nil {
		return err
	}

	h, err := f.Section(section)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"section": section,
		"offset":  fmt.Sprintf("0x%X", h.PointerToRawData),
		"size":    h.SizeOfRawData,
	}).Debug("找到节区")

	out, err := fs.Create(outPath)
	if err != nil {
		return &ExitError{
			Code: ExitOutputPath,
			Err:  fmt.Errorf("无法创建输出文件 (第三个参数必须是可写路径): %w", err),
		}
	}

	extractor := pe.Extractor{MaxSize: maxSize}
	if err := extractor.Extract(in, out, *h); err != nil {
		_ = out.Close()
		if rmErr := fs.Remove(outPath); rmErr != nil {
			log.WithError(rmErr).Warn("删除不完整的输出文件失败")
		}
		return err
	}

	if err := out.Close(); err != nil {
		return &ExitError{Code: ExitCloseOutput, Err: fmt.Errorf("关闭输出文件失败: %w", err)}
	}

	inClosed = true
	if err := in.Close(); err != nil {
		return &ExitError{Code: ExitCloseInput, Err: fmt.Errorf("关闭输入文件失败: %w", err)}
	}

	green := color.New(color.FgGreen, color.Bold)
	_, _ = green.Fprintf(cmd.env.Stdout, "✓ 已提取节区 %s (%s) -> %s\n",
		section, humanize.IBytes(uint64(h.SizeOfRawData)), outPath)
	return nil
}
