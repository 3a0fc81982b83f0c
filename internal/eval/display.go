package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorInfo    = lipgloss.Color("#5FAFFF")
	colorSuccess = lipgloss.Color("#00D787")
	colorWarning = lipgloss.Color("#FFAF00")
	colorError   = lipgloss.Color("#FF5F87")
	colorAccent  = lipgloss.Color("#AF87FF")

	styleTitle  = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	styleLabel  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleQuery  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	styleOK     = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleFailed = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

// panelStyle 依狀態決定外框顏色
func panelStyle(status string) lipgloss.Style {
	border := colorInfo
	switch status {
	case "error", "unavailable":
		border = colorError
	case "best_effort", "refused":
		border = colorWarning
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// RenderResult 以外框面板呈現一筆結果
func RenderResult(index, total int, r Result) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("Result %d/%d - ID: %s", index+1, total, r.ID)))
	b.WriteString("\n")
	b.WriteString(styleLabel.Render("ID: ") + r.ID + "\n")
	b.WriteString(styleQuery.Render("Query:") + "\n")
	b.WriteString(r.Query + "\n\n")
	b.WriteString(styleMuted.Render("--- Response ---") + "\n")
	b.WriteString(strings.TrimRight(r.Response, "\n"))
	if r.Status != "" {
		b.WriteString("\n\n" + styleMuted.Render("status: "+r.Status))
	}
	return panelStyle(r.Status).Render(b.String())
}

// PrintResults 依序輸出所有結果面板
func PrintResults(w io.Writer, results []Result) {
	for i, r := range results {
		fmt.Fprintln(w, RenderResult(i, len(results), r))
	}
}

// Info 輸出一般訊息
func Info(w io.Writer, msg string) {
	fmt.Fprintln(w, styleTitle.Render(msg))
}

// Success 輸出成功訊息
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, styleOK.Render(msg))
}

// Failure 輸出錯誤訊息
func Failure(w io.Writer, msg string) {
	fmt.Fprintln(w, styleFailed.Render(msg))
}
