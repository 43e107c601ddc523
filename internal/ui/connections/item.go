package connections

import (
	"fmt"

	"lluview/internal/llu"
	"lluview/internal/render"
)

// Item wraps a patient connection for the bubbles list.
type Item struct {
	llu.Connection
	Index int
}

func (i Item) Title() string {
	title := i.Connection.Name()
	if m := i.Connection.GlucoseMeasurement; m != nil {
		style := render.LevelStyle(*m, i.Connection.TargetLow, i.Connection.TargetHigh)
		title += "  " + style.Render(render.FormatReading(*m))
	}
	return title
}

func (i Item) Description() string {
	desc := "id " + i.Connection.PatientID
	if i.Connection.TargetLow > 0 || i.Connection.TargetHigh > 0 {
		desc += fmt.Sprintf(" | target %.0f-%.0f mg/dL", i.Connection.TargetLow, i.Connection.TargetHigh)
	}
	if m := i.Connection.GlucoseMeasurement; m != nil {
		desc += " | " + render.TimeAgo(m.Time())
	}
	return desc
}

func (i Item) FilterValue() string {
	return i.Connection.Name() + " " + i.Connection.PatientID
}
