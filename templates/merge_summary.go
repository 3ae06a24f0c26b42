// Package templates renders the plain-text reports printed by the CLI.
package templates

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/usecase"
)

const mergeSummaryText = `SilentSkies merge {{.RunID}}
  noise rows:    {{.NoiseRows}}
  arrival rows:  {{.ArrivalRows}} ({{.ArrivalSource}})
  matched:       {{.MatchedRows}} of {{.NoiseRows}} ({{percent .MatchedRows .NoiseRows}}) within {{.Tolerance}}
{{- if .Output}}
  written to:    {{.Output}}
{{- end}}
{{- if .ExportRange}}
  exported to:   {{.ExportRange}}
{{- end}}
{{- if .BusiestHour}}
  busiest hour:  {{.BusiestHour}}
{{- end}}
{{- if .Warnings}}
warnings:
{{- range .Warnings}}
  - {{.}}
{{- end}}
{{- end}}
`

var mergeSummary = template.Must(template.New("merge_summary").
	Funcs(template.FuncMap{"percent": percent}).
	Parse(mergeSummaryText))

// MergeSummary is the data shown after a CLI merge
type MergeSummary struct {
	*usecase.DashboardResult
	ArrivalSource string
	Output        string
	BusiestHour   string
}

// NewMergeSummary builds a summary from a dashboard result.
func NewMergeSummary(result *usecase.DashboardResult, arrivalSource, output string) MergeSummary {
	s := MergeSummary{DashboardResult: result, ArrivalSource: arrivalSource, Output: output}
	if result.Hourly != nil {
		var best *entity.HourOfDayStat
		for i, h := range result.Hourly.HourOfDay {
			if h.ArrivalCount > 0 && (best == nil || h.ArrivalCount > best.ArrivalCount) {
				best = &result.Hourly.HourOfDay[i]
			}
		}
		if best != nil {
			s.BusiestHour = fmt.Sprintf("%02d:00 UTC, %d arrivals", best.Hour, best.ArrivalCount)
		}
	}
	return s
}

// RenderMergeSummary writes the summary as text.
func RenderMergeSummary(w io.Writer, s MergeSummary) error {
	return mergeSummary.Execute(w, s)
}

// MergeSummaryString is RenderMergeSummary into a string.
func MergeSummaryString(s MergeSummary) (string, error) {
	var b strings.Builder
	if err := RenderMergeSummary(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}

func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(part)/float64(total))
}
