// Package cli provides the secextract command-line interface.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/ZacharyZcR/secextract/internal/pe"
)

// Reporter formats and prints PE analysis results.
type Reporter struct {
	info           *pe.Info
	w              io.Writer
	suspiciousOnly bool
	showEntropy    bool
}

// NewReporter creates a new reporter for the given PE info.
func NewReporter(info *pe.Info, w io.Writer) *Reporter {
	return &Reporter{info: info, w: w}
}

// SetSuspiciousOnly enables suspicious-only mode (show RWX sections only).
func (r *Reporter) SetSuspiciousOnly(suspicious bool) {
	r.suspiciousOnly = suspicious
}

// SetEntropy adds the entropy column to the section table.
func (r *Reporter) SetEntropy(show bool) {
	r.showEntropy = show
}

// PrintHeaders outputs the header summary and derived offsets.
func (r *Reporter) PrintHeaders() {
	r.printBanner()
	r.printBasicInfo()
	r.printOffsets()
}

// PrintSections outputs the section table.
func (r *Reporter) PrintSections() {
	sections := r.info.Sections

	if r.suspiciousOnly {
		var suspicious []pe.SectionInfo
		for _, s := range sections {
			if s.Permissions == "RWX" {
				suspicious = append(suspicious, s)
			}
		}
		sections = suspicious
	}

	yellow := color.New(color.FgYellow, color.Bold)
	if r.suspiciousOnly {
		_, _ = yellow.Fprintf(r.w, "\n【可疑节区】(共 %d 个)\n", len(sections))
	} else {
		_, _ = yellow.Fprintf(r.w, "\n【节区信息】(共 %d 个)\n", len(sections))
	}

	if len(sections) == 0 {
		if r.suspiciousOnly {
			fmt.Fprintln(r.w, "  未发现可疑节区")
		} else {
			fmt.Fprintln(r.w, "  未发现节区")
		}
		return
	}

	header := []string{"名称", "虚拟地址", "虚拟大小", "文件偏移", "原始大小", "权限", "特征"}
	if r.showEntropy {
		header = append(header, "熵值")
	}

	table := tablewriter.NewWriter(r.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	for _, s := range sections {
		size := humanize.IBytes(uint64(s.Size))
		if s.Truncated {
			size += " (截断)"
		}

		row := []string{
			s.Name,
			fmt.Sprintf("0x%08X", s.VirtualAddress),
			humanize.IBytes(uint64(s.VirtualSize)),
			fmt.Sprintf("0x%08X", s.Offset),
			size,
			permissionColor(s.Permissions).Sprint(s.Permissions),
			fmt.Sprintf("0x%08X", s.Characteristics),
		}
		if r.showEntropy {
			row = append(row, formatEntropy(s))
		}
		table.Append(row)
	}
	table.Render()
}

// PrintCodeCaves outputs padding runs found by pe.CodeCaveDetector.
func (r *Reporter) PrintCodeCaves(caves []pe.CodeCave, minSize uint32) {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprintf(r.w, "\n【Code Caves】(最小 %d 字节, 共 %d 个)\n", minSize, len(caves))

	if len(caves) == 0 {
		fmt.Fprintln(r.w, "  未发现符合条件的 Code Caves")
		return
	}

	table := tablewriter.NewWriter(r.w)
	table.SetHeader([]string{"节区", "文件偏移", "RVA", "大小", "填充"})
	table.SetAutoFormatHeaders(false)
	for _, cave := range caves {
		fill := "0x00"
		if cave.FillByte == 0xCC {
			fill = "0xCC (INT3)"
		}
		table.Append([]string{
			cave.Section,
			fmt.Sprintf("0x%08X", cave.Offset),
			fmt.Sprintf("0x%08X", cave.RVA),
			humanize.IBytes(uint64(cave.Size)),
			fill,
		})
	}
	table.Render()
}

func (r *Reporter) printBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	_, _ = cyan.Fprintln(r.w, "\n╔════════════════════════════════════════╗")
	_, _ = cyan.Fprintln(r.w, "║          secextract PE头信息           ║")
	_, _ = cyan.Fprintln(r.w, "╚════════════════════════════════════════╝")
}

func (r *Reporter) printBasicInfo() {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprintln(r.w, "\n【基本信息】")

	info := r.info
	fmt.Fprintf(r.w, "  %-20s: %s\n", "文件大小", humanize.IBytes(uint64(info.FileSize)))
	fmt.Fprintf(r.w, "  %-20s: %s\n", "架构", info.Architecture)
	fmt.Fprintf(r.w, "  %-20s: %s\n", "镜像类型", info.ImageKind)
	fmt.Fprintf(r.w, "  %-20s: %s\n", "时间戳", info.Timestamp.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(r.w, "  %-20s: 0x%04X\n", "文件特征", info.Characteristics)
	if info.LinkerVersion != "" {
		fmt.Fprintf(r.w, "  %-20s: %s\n", "链接器版本", info.LinkerVersion)
		fmt.Fprintf(r.w, "  %-20s: 0x%X\n", "入口点", info.EntryPoint)
		fmt.Fprintf(r.w, "  %-20s: 0x%X\n", "代码基址", info.BaseOfCode)
		fmt.Fprintf(r.w, "  %-20s: %s\n", "代码大小", humanize.IBytes(uint64(info.SizeOfCode)))
	}
	fmt.Fprintf(r.w, "  %-20s: %d\n", "节区数量", len(info.Sections))
}

func (r *Reporter) printOffsets() {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprintln(r.w, "\n【头部偏移】")

	o := r.info.Offsets
	fmt.Fprintln(r.w, strings.Repeat("-", 40))
	fmt.Fprintf(r.w, "  %-20s: 0x%08X\n", "签名指针", o.SignaturePointer)
	fmt.Fprintf(r.w, "  %-20s: 0x%08X\n", "COFF头", o.COFFHeader)
	fmt.Fprintf(r.w, "  %-20s: 0x%08X\n", "可选头", o.OptionalHeader)
	fmt.Fprintf(r.w, "  %-20s: 0x%08X\n", "节区表", o.SectionTable)
	fmt.Fprintln(r.w, strings.Repeat("-", 40))
}

// permissionColor highlights dangerous permissions (RWX).
func permissionColor(perms string) *color.Color {
	switch {
	case perms == "RWX":
		return color.New(color.FgRed, color.Bold)
	case strings.Contains(perms, "X"):
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}

func formatEntropy(s pe.SectionInfo) string {
	switch {
	case s.Truncated:
		return "-"
	case s.Entropy > 7.0:
		return color.New(color.FgRed).Sprintf("%.2f (疑似加壳)", s.Entropy)
	default:
		return fmt.Sprintf("%.2f", s.Entropy)
	}
}
