package email

import (
	"html/template"
	"strings"
	"time"

	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
)

// Card colors per intensity band.
var intensityColors = map[weather.Intensity]string{
	weather.IntensityLight:     "#fbc02d",
	weather.IntensityMedium:    "#f57c00",
	weather.IntensityHeavy:     "#d32f2f",
	weather.IntensityVeryHeavy: "#7b1fa2",
}

const defaultCardColor = "#607d8b"

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"color": func(i weather.Intensity) string {
		if c, ok := intensityColors[i]; ok {
			return c
		}
		return defaultCardColor
	},
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;background:#f4f4f4;padding:16px;">
  <h2 style="color:#1a237e;">{{if .Test}}[TEST] {{end}}MonsoonWatch Rain Alert</h2>
  <p><strong>Flood risk: {{.FloodRisk}}</strong></p>
  {{range .Alerts}}
  <div style="background:#fff;border-left:6px solid {{color .Intensity}};margin:8px 0;padding:12px;border-radius:4px;">
    <strong>{{.Zone}}</strong><br>
    {{printf "%.1f" .RainfallMm}} mm/hr &middot; <span style="color:{{color .Intensity}};">{{.Intensity}}</span>
  </div>
  {{end}}
  <p style="color:#777;font-size:12px;">Generated at {{.GeneratedAtRFC3339}}</p>
</body>
</html>`))

type reportData struct {
	notify.Summary
	GeneratedAtRFC3339 string
}

// RenderHTML renders the summary as the HTML report body.
func RenderHTML(s notify.Summary) (string, error) {
	var b strings.Builder
	err := reportTemplate.Execute(&b, reportData{
		Summary:            s,
		GeneratedAtRFC3339: s.GeneratedAt.Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
