package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sunkaracharan/roifinal/internal/results"
)

func init() {
	api.DisableConfigDir()
}

const (
	colorPrimary   = "#2E86AB"
	colorSecondary = "#A23B72"
	colorAccent    = "#1976D2"
	colorPositive  = "#2E7D32"
	colorMuted     = "#555555"

	pageWidth = 595
	marginX   = 72
)

var printer = message.NewPrinter(language.English)

// Report is everything printed on an exported result.
type Report struct {
	Result      results.ResultDTO
	Username    string
	GeneratedAt time.Time
}

// FileName is the download name of a result's report.
func FileName(username string, ts time.Time) string {
	return fmt.Sprintf("ROI_Report_%s_%s.pdf", username, ts.Format("20060102_1504"))
}

type layout struct {
	Paper string          `json:"paper"`
	Pages map[string]page `json:"pages"`
}

type page struct {
	Content content `json:"content"`
}

type content struct {
	Text []textBox `json:"text"`
}

type textBox struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  font       `json:"font"`
	Align string     `json:"align,omitempty"`
}

type font struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"col,omitempty"`
}

// Render lays the report out on one A4 page and returns the PDF bytes.
func Render(r Report) ([]byte, error) {
	rd, err := json.Marshal(buildLayout(r))
	if err != nil {
		return nil, fmt.Errorf("encode report layout: %w", err)
	}
	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(rd), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return out.Bytes(), nil
}

func buildLayout(r Report) layout {
	res := r.Result
	var lines []textBox
	y := 790.0
	add := func(value string, x float64, f font, align string) {
		lines = append(lines, textBox{Value: value, Pos: [2]float64{x, y}, Font: f, Align: align})
	}
	center := float64(pageWidth) / 2
	left := float64(marginX)
	right := float64(pageWidth - marginX)

	add(r.GeneratedAt.Format("01/02/06, 03:04 PM"), left, font{Name: "Helvetica", Size: 10, Color: colorMuted}, "left")
	y -= 40
	add("My ROI Results", center, font{Name: "Helvetica-Bold", Size: 24, Color: colorPrimary}, "center")
	y -= 26
	add("View and compare your saved calculations", center, font{Name: "Helvetica", Size: 16, Color: colorSecondary}, "center")

	y -= 50
	add(res.Mode.Label(), left, font{Name: "Helvetica-Bold", Size: 14}, "left")
	add(money(res.Results.TotalAnnualGain), right, font{Name: "Helvetica-Bold", Size: 16, Color: colorAccent}, "right")
	y -= 16
	add(res.Timestamp.Format("Jan 02, 2006 15:04"), left, font{Name: "Helvetica", Size: 10}, "left")
	add("Total Gain", right, font{Name: "Helvetica", Size: 10}, "right")

	y -= 44
	add("Key Metrics", left, font{Name: "Helvetica-Bold", Size: 14, Color: colorPrimary}, "left")
	y -= 26
	add(printer.Sprintf("%.0f%%", res.Results.ROIPercent), 180, font{Name: "Helvetica-Bold", Size: 16, Color: colorAccent}, "center")
	add(printer.Sprintf("%.1f mo", res.Results.PaybackMonths), 415, font{Name: "Helvetica-Bold", Size: 16, Color: colorPositive}, "center")
	y -= 16
	add("ROI", 180, font{Name: "Helvetica", Size: 10}, "center")
	add("Payback", 415, font{Name: "Helvetica", Size: 10}, "center")

	y -= 44
	add("Breakdown", left, font{Name: "Helvetica-Bold", Size: 14, Color: colorPrimary}, "left")
	pairs := [][2]struct {
		label string
		value float64
	}{
		{{"Cloud", res.Results.CloudSavings}, {"Productivity", res.Results.ProductivityGain}},
		{{"Performance", res.Results.PerformanceGain}, {"Availability", res.Results.AvailabilityGain}},
	}
	for _, row := range pairs {
		y -= 26
		add(money(row[0].value), 180, font{Name: "Helvetica-Bold", Size: 13}, "center")
		add(money(row[1].value), 415, font{Name: "Helvetica-Bold", Size: 13}, "center")
		y -= 14
		add(row[0].label, 180, font{Name: "Helvetica", Size: 10, Color: colorMuted}, "center")
		add(row[1].label, 415, font{Name: "Helvetica", Size: 10, Color: colorMuted}, "center")
	}

	y -= 44
	add("Key Inputs", left, font{Name: "Helvetica-Bold", Size: 14, Color: colorPrimary}, "left")
	inputs := []struct {
		label string
		value string
	}{
		{"Annual Revenue", money(res.Inputs.AnnualRevenue)},
		{"Engineers", printer.Sprintf("%d", res.Inputs.NumEngineers)},
		{"Cloud Spend", money(res.Inputs.AnnualCloudSpend)},
	}
	for _, in := range inputs {
		y -= 20
		add(in.label, left, font{Name: "Helvetica", Size: 11}, "left")
		add(in.value, right, font{Name: "Helvetica-Bold", Size: 11}, "right")
	}

	y -= 50
	add(fmt.Sprintf("Prepared for %s", r.Username), center, font{Name: "Helvetica-Oblique", Size: 9, Color: colorMuted}, "center")

	return layout{
		Paper: "A4",
		Pages: map[string]page{"1": {Content: content{Text: lines}}},
	}
}

func money(v float64) string {
	return printer.Sprintf("$%.0f", v)
}
