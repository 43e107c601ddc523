package render

import (
	"testing"
	"time"

	"lluview/internal/llu"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 10); got != "" {
		t.Fatalf("empty input produced %q", got)
	}

	got := Sparkline([]float64{1, 8}, 10)
	if got != "▁█" {
		t.Fatalf("Sparkline(1,8) = %q", got)
	}

	// Flat series renders the lowest bar throughout.
	if got := Sparkline([]float64{5, 5, 5}, 10); got != "▁▁▁" {
		t.Fatalf("flat series = %q", got)
	}

	// Window truncates to the newest values.
	got = Sparkline([]float64{1, 2, 3, 4, 5}, 2)
	if len([]rune(got)) != 2 {
		t.Fatalf("width not enforced: %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(5.8, 0); got != "5.8 mmol/L" {
		t.Fatalf("mmol format = %q", got)
	}
	if got := FormatValue(104, 1); got != "104 mg/dL" {
		t.Fatalf("mgdl format = %q", got)
	}
}

func TestTrendGlyph(t *testing.T) {
	for arrow, want := range map[int]string{1: "↓↓", 3: "→", 5: "↑↑", 0: "·", 9: "·"} {
		if got := TrendGlyph(arrow); got != want {
			t.Errorf("TrendGlyph(%d) = %q, want %q", arrow, got, want)
		}
	}
}

func TestLevelStyle(t *testing.T) {
	low := llu.GlucoseMeasurement{ValueInMgPerDl: 60}
	if LevelStyle(low, 70, 180).GetForeground() != LowStyle.GetForeground() {
		t.Error("value below target not styled low")
	}
	high := llu.GlucoseMeasurement{ValueInMgPerDl: 200}
	if LevelStyle(high, 70, 180).GetForeground() != HighStyle.GetForeground() {
		t.Error("value above target not styled high")
	}
	ok := llu.GlucoseMeasurement{ValueInMgPerDl: 104}
	if LevelStyle(ok, 70, 180).GetForeground() != InRangeStyle.GetForeground() {
		t.Error("in-range value not styled in range")
	}
	// No target range: fall back to server flags.
	flagged := llu.GlucoseMeasurement{IsLow: true}
	if LevelStyle(flagged, 0, 0).GetForeground() != LowStyle.GetForeground() {
		t.Error("isLow flag ignored")
	}
}

func TestTimeAgo(t *testing.T) {
	if got := TimeAgo(time.Time{}); got != "unknown" {
		t.Fatalf("zero time = %q", got)
	}
	if got := TimeAgo(time.Now().Add(-30 * time.Second)); got != "just now" {
		t.Fatalf("30s = %q", got)
	}
	if got := TimeAgo(time.Now().Add(-5 * time.Minute)); got != "5m ago" {
		t.Fatalf("5m = %q", got)
	}
}
