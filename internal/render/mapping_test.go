package render

import (
	"math"
	"testing"

	"github.com/soundprobe/soundprobe/internal/domain"
)

const tolerance = 1e-9

func TestTimeToXRoundTrip(t *testing.T) {
	m := NewMapper(10.0)

	widths := []int{1, 100, 640, 1920}
	times := []float64{0, 0.1, 2.5, 5.0, 9.999, 10.0}

	for _, w := range widths {
		for _, tt := range times {
			x := m.TimeToX(tt, w)
			got := m.XToTime(x, w)
			if math.Abs(got-tt) > tolerance*10 {
				t.Errorf("round trip time %v width %d: got %v", tt, w, got)
			}
		}
	}
}

func TestFrequencyToYRoundTrip(t *testing.T) {
	m := NewMapper(10.0)

	heights := []int{1, 128, 480}
	freqs := []float64{0, 440, 1000, 10000, domain.MaxFrequencyHz}

	for _, h := range heights {
		for _, f := range freqs {
			y := m.FrequencyToY(f, h)
			got := m.YToFrequency(y, h)
			if math.Abs(got-f) > 1e-6 {
				t.Errorf("round trip freq %v height %d: got %v", f, h, got)
			}
		}
	}
}

func TestZeroDurationIsInvalid(t *testing.T) {
	m := NewMapper(0)

	if m.Valid() {
		t.Fatal("mapper with zero duration should be invalid")
	}

	// No division by zero, everything degrades to zero
	if got := m.TimeToX(5, 100); got != 0 {
		t.Errorf("TimeToX on invalid mapper: got %v, want 0", got)
	}
	if got := m.XToTime(50, 100); got != 0 {
		t.Errorf("XToTime on invalid mapper: got %v, want 0", got)
	}
	if _, ok := m.PixelToPolar(10, 10, 50, 50, 40); ok {
		t.Error("PixelToPolar on invalid mapper should report false")
	}
}

func TestFrequencyClampsToBoundary(t *testing.T) {
	m := NewMapper(10.0)

	// Above the bound clamps to the top edge, not beyond
	y := m.FrequencyToY(domain.MaxFrequencyHz*2, 480)
	if y != 0 {
		t.Errorf("over-bound frequency should map to top edge, got y=%v", y)
	}

	r := m.FrequencyToRadius(domain.MaxFrequencyHz*2, 200)
	if r != 200 {
		t.Errorf("over-bound frequency should clamp to max radius, got %v", r)
	}
}

func TestPixelToPolarInsideAndOutside(t *testing.T) {
	m := NewMapper(60.0)

	// Center maps to time 0-ish, frequency 0
	p, ok := m.PixelToPolar(100, 100, 100, 100, 80)
	if !ok {
		t.Fatal("center pixel should be inside the plot")
	}
	if p.Frequency != 0 {
		t.Errorf("center pixel frequency: got %v, want 0", p.Frequency)
	}

	// Straight up from center is 12 o'clock = time 0
	p, ok = m.PixelToPolar(100, 60, 100, 100, 80)
	if !ok {
		t.Fatal("pixel inside radius should be accepted")
	}
	if math.Abs(p.Time) > tolerance && math.Abs(p.Time-60.0) > tolerance {
		t.Errorf("12 o'clock should map to time 0 (or wrap), got %v", p.Time)
	}

	// Straight right from center is 3 o'clock = quarter of the clip
	p, ok = m.PixelToPolar(140, 100, 100, 100, 80)
	if !ok {
		t.Fatal("pixel inside radius should be accepted")
	}
	if math.Abs(p.Time-15.0) > 1e-6 {
		t.Errorf("3 o'clock should map to a quarter of the clip, got %v", p.Time)
	}

	// Outside the circle is rejected
	if _, ok := m.PixelToPolar(300, 300, 100, 100, 80); ok {
		t.Error("pixel outside max radius should be rejected")
	}
}

func TestSonarAngleRadiusForward(t *testing.T) {
	m := NewMapper(60.0)

	// Forward map a point and invert it through PixelToPolar
	const (
		cx, cy    = 100.0, 100.0
		maxRadius = 80.0
	)
	angle := m.TimeToAngle(15.0) // quarter of the clip
	radius := m.FrequencyToRadius(11025, maxRadius)

	px := cx + math.Cos(angle)*radius
	py := cy + math.Sin(angle)*radius

	p, ok := m.PixelToPolar(px, py, cx, cy, maxRadius)
	if !ok {
		t.Fatal("forward-mapped pixel should be inside the plot")
	}
	if math.Abs(p.Time-15.0) > 1e-6 {
		t.Errorf("polar inverse time: got %v, want 15", p.Time)
	}
	if math.Abs(p.Frequency-11025) > 1e-3 {
		t.Errorf("polar inverse frequency: got %v, want 11025", p.Frequency)
	}
}

func TestNearestEvent(t *testing.T) {
	events := []domain.AcousticEvent{
		{Time: 1.0, Frequency: 500},
		{Time: 5.0, Frequency: 1000},
		{Time: 9.0, Frequency: 8000},
	}

	// Exact hit selects with distance 0
	idx, dist := NearestEvent(events, 5.0, 1000)
	if idx != 1 {
		t.Fatalf("expected event 1, got %d", idx)
	}
	if dist != 0 {
		t.Errorf("exact hit should have distance 0, got %v", dist)
	}

	// Combined metric: |dt| + |df|/100
	idx, dist = NearestEvent(events, 1.5, 600)
	if idx != 0 {
		t.Fatalf("expected event 0, got %d", idx)
	}
	want := 0.5 + 100.0/100.0
	if math.Abs(dist-want) > tolerance {
		t.Errorf("distance: got %v, want %v", dist, want)
	}
}

func TestNearestEventTieBreaksFirst(t *testing.T) {
	// Two events equidistant from the probe point
	events := []domain.AcousticEvent{
		{Time: 4.0, Frequency: 1000, Label: "first"},
		{Time: 6.0, Frequency: 1000, Label: "second"},
	}

	idx, _ := NearestEvent(events, 5.0, 1000)
	if idx != 0 {
		t.Errorf("tie should keep the first event in iteration order, got %d", idx)
	}
}

func TestNearestEventEmpty(t *testing.T) {
	idx, dist := NearestEvent(nil, 1, 1)
	if idx != -1 {
		t.Errorf("empty events: got index %d, want -1", idx)
	}
	if !math.IsInf(dist, 1) {
		t.Errorf("empty events: got distance %v, want +Inf", dist)
	}
}
