package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/codebeauty/loadingsse/internal/stage"
)

var stageLabels = map[stage.Locale]map[stage.Stage]string{
	stage.LocaleEN: {
		stage.Initializing:     "Initializing",
		stage.ProcessingData:   "Processing data",
		stage.Validating:       "Validating",
		stage.GeneratingReport: "Generating report",
		stage.Finalizing:       "Finalizing",
		stage.Completed:        "Completed",
	},
	stage.LocaleJA: {
		stage.Initializing:     "初期化",
		stage.ProcessingData:   "データ処理",
		stage.Validating:       "検証",
		stage.GeneratingReport: "レポート生成",
		stage.Finalizing:       "最終処理",
		stage.Completed:        "完了",
	},
}

var stageColors = map[stage.Stage]string{
	stage.Initializing:     "#1890ff",
	stage.ProcessingData:   "#52c41a",
	stage.Validating:       "#faad14",
	stage.GeneratingReport: "#722ed1",
	stage.Finalizing:       "#13c2c2",
	stage.Completed:        "#52c41a",
}

const defaultStageColor = "#1890ff"

// StageLabel returns the display name of s, or the raw tag when unknown.
func StageLabel(s stage.Stage, loc stage.Locale) string {
	labels, ok := stageLabels[loc]
	if !ok {
		labels = stageLabels[stage.LocaleEN]
	}
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// StageColor returns the hex color used for s.
func StageColor(s stage.Stage) string {
	if c, ok := stageColors[s]; ok {
		return c
	}
	return defaultStageColor
}

// StageStyle returns a text style in the stage color.
func StageStyle(s stage.Stage) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(StageColor(s)))
}

// screenText holds the fixed strings of the progress screen.
type screenText struct {
	Title      string
	Prompt     string
	Starting   string
	Restarting string
	Done       string
	Dismiss    string
}

var screenTexts = map[stage.Locale]screenText{
	stage.LocaleEN: {
		Title:      "Loading Progress",
		Prompt:     "Press s to start processing",
		Starting:   "Starting...",
		Restarting: "Restarting...",
		Done:       "Processing complete",
		Dismiss:    "enter:dismiss",
	},
	stage.LocaleJA: {
		Title:      "SSE ローディング画面",
		Prompt:     "処理を開始するには「s」キーを押してください",
		Starting:   "開始しています...",
		Restarting: "再起動しています...",
		Done:       "処理が完了しました",
		Dismiss:    "enter:閉じる",
	},
}

func textFor(loc stage.Locale) screenText {
	if t, ok := screenTexts[loc]; ok {
		return t
	}
	return screenTexts[stage.LocaleEN]
}
