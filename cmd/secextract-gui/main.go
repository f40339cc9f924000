// Package main provides the secextract GUI application.
package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/ZacharyZcR/secextract/internal/cli"
	"github.com/ZacharyZcR/secextract/internal/pe"
)

func main() {
	fs := afero.NewOsFs()

	myApp := app.New()
	myWindow := myApp.NewWindow("secextract - PE节区提取工具")
	myWindow.Resize(fyne.NewSize(900, 650))

	// File path
	filePathEntry := widget.NewEntry()
	filePathEntry.SetPlaceHolder("选择PE文件...")

	// Header and section summary
	analysisOutput := widget.NewMultiLineEntry()
	analysisOutput.SetPlaceHolder("节区信息将显示在这里...")
	analysisOutput.Disable()

	statusLabel := widget.NewLabel("就绪")

	sectionSelect := widget.NewSelect(nil, nil)
	sectionSelect.PlaceHolder = "先解析文件"

	setStatus := func(text string) {
		fyne.Do(func() { statusLabel.SetText(text) })
	}
	showError := func(err error, status string) {
		fyne.Do(func() {
			dialog.ShowError(err, myWindow)
			statusLabel.SetText(status)
		})
	}

	fileButton := widget.NewButton("选择文件", func() {
		dialog.ShowFileOpen(func(file fyne.URIReadCloser, err error) {
			if err != nil || file == nil {
				return
			}
			defer func() { _ = file.Close() }()
			filePathEntry.SetText(file.URI().Path())
		}, myWindow)
	})

	parseButton := widget.NewButton("解析", func() {
		if filePathEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("请先选择PE文件"), myWindow)
			return
		}

		path := filePathEntry.Text
		statusLabel.SetText("正在解析...")
		go func() {
			info, err := cli.AnalyzeFile(fs, path)
			if err != nil {
				showError(err, "解析失败")
				return
			}

			names := make([]string, 0, len(info.Sections))
			for _, s := range info.Sections {
				names = append(names, s.Name)
			}
			summary := formatInfo(path, info)

			fyne.Do(func() {
				analysisOutput.SetText(summary)
				sectionSelect.Options = names
				sectionSelect.ClearSelected()
				sectionSelect.Refresh()
				statusLabel.SetText(fmt.Sprintf("解析完成 (%d 个节区)", len(names)))
			})
		}()
	})

	extractButton := widget.NewButton("提取节区", func() {
		if filePathEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("请先选择PE文件"), myWindow)
			return
		}
		if sectionSelect.Selected == "" {
			dialog.ShowError(fmt.Errorf("请选择要提取的节区"), myWindow)
			return
		}

		path := filePathEntry.Text
		section := sectionSelect.Selected
		dialog.ShowFileSave(func(out fyne.URIWriteCloser, err error) {
			if err != nil || out == nil {
				return
			}

			statusLabel.SetText("正在提取...")
			go func() {
				n, err := cli.ExtractFile(fs, path, section, out)
				_ = out.Close()
				if err != nil {
					showError(err, "提取失败")
					return
				}
				fyne.Do(func() {
					dialog.ShowInformation("成功",
						fmt.Sprintf("已提取节区 %s (%s) -> %s", section, humanize.IBytes(uint64(n)), out.URI().Path()),
						myWindow)
				})
				setStatus("提取完成")
			}()
		}, myWindow)
	})

	// Layout
	fileBox := container.NewBorder(nil, nil, nil, fileButton, filePathEntry)

	extractBox := container.NewVBox(
		widget.NewLabel("节区提取:"),
		container.NewGridWithColumns(2,
			sectionSelect,
			extractButton,
		),
	)

	mainContent := container.NewBorder(
		container.NewVBox(
			widget.NewLabel("PE文件路径:"),
			fileBox,
			widget.NewSeparator(),
			parseButton,
		),
		container.NewVBox(
			widget.NewSeparator(),
			extractBox,
			widget.NewSeparator(),
			statusLabel,
		),
		nil,
		nil,
		container.NewVScroll(analysisOutput),
	)

	myWindow.SetContent(mainContent)
	myWindow.ShowAndRun()
}

func formatInfo(path string, info *pe.Info) string {
	var output strings.Builder
	output.WriteString(fmt.Sprintf("文件路径: %s\n", path))
	output.WriteString(fmt.Sprintf("文件大小: %s\n", humanize.IBytes(uint64(info.FileSize))))
	output.WriteString(fmt.Sprintf("架构: %s\n", info.Architecture))
	output.WriteString(fmt.Sprintf("镜像类型: %s\n", info.ImageKind))
	output.WriteString(fmt.Sprintf("入口点: 0x%X\n", info.EntryPoint))
	output.WriteString(fmt.Sprintf("节区表偏移: 0x%X\n", info.Offsets.SectionTable))

	output.WriteString(fmt.Sprintf("\n节区信息 (%d 个):\n", len(info.Sections)))
	for _, s := range info.Sections {
		line := fmt.Sprintf("  %-8s 偏移=0x%08X 大小=%s 权限=%s",
			s.Name, s.Offset, humanize.IBytes(uint64(s.Size)), s.Permissions)
		if s.Truncated {
			line += " (数据截断)"
		} else {
			line += fmt.Sprintf(" 熵值=%.2f", s.Entropy)
		}
		output.WriteString(line + "\n")
	}

	return output.String()
}
