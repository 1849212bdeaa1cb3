package inspector

import (
	"reflect"
	"testing"

	"github.com/pthm-cable/racers/components"
)

func TestParseHint(t *testing.T) {
	tests := []struct {
		tag  string
		want Hint
	}{
		{"", Hint{Max: 1}},
		{"bar", Hint{Widget: WidgetBar, Max: 1}},
		{"bar,min:-1,max:1", Hint{Widget: WidgetBar, Min: -1, Max: 1}},
		{"label,fmt:%.1f", Hint{Widget: WidgetLabel, Format: "%.1f", Max: 1}},
		{"angle", Hint{Widget: WidgetAngle, Max: 1}},
		{"bool", Hint{Widget: WidgetBool, Max: 1}},
		{"skip", Hint{Widget: WidgetSkip, Max: 1}},
		{"mystery,name:Lap time", Hint{Name: "Lap time", Max: 1}},
		{"bar,max:oops,colour:red", Hint{Widget: WidgetBar, Max: 1}},
		{"bar,labels:L| C |R", Hint{Widget: WidgetBar, Max: 1, Labels: []string{"L", "C", "R"}}},
	}

	for _, tt := range tests {
		if got := ParseHint(tt.tag); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseHint(%q): got %+v, want %+v", tt.tag, got, tt.want)
		}
	}
}

func TestHintLabelsFor(t *testing.T) {
	h := ParseHint("bar,labels:a|b|c")
	if got := h.labelsFor(3); len(got) != 3 {
		t.Errorf("matching count: got %v", got)
	}
	if got := h.labelsFor(15); got != nil {
		t.Errorf("mismatched count should drop labels, got %v", got)
	}
}

func TestHintText(t *testing.T) {
	tests := []struct {
		hint Hint
		in   any
		want string
	}{
		{Hint{}, float32(1.234), "1.23"},
		{Hint{}, 12, "12"},
		{Hint{}, true, "true"},
		{Hint{Format: "%.3f"}, 0.5, "0.500"},
	}
	for _, tt := range tests {
		if got := tt.hint.Text(tt.in); got != tt.want {
			t.Errorf("Text(%v) with %q: got %q, want %q", tt.in, tt.hint.Format, got, tt.want)
		}
	}
}

func TestExtractFields_Progress(t *testing.T) {
	prog := components.Progress{Fitness: 1500, Sector: 4, Laps: 2, Crashed: true, JustLapped: true}

	fields := ExtractFields(&prog)

	want := []string{"Fitness", "Sector", "SectorTimer", "LapTimer", "LapTime", "Laps", "Crashed"}
	if len(fields) != len(want) {
		t.Fatalf("fields: got %d, want %d", len(fields), len(want))
	}
	for i, name := range want {
		if fields[i].Name != name {
			t.Errorf("field %d: got %s, want %s", i, fields[i].Name, name)
		}
	}
	if v, ok := fields[0].Float(); !ok || v != 1500 {
		t.Errorf("Fitness: got %v/%v, want 1500", v, ok)
	}
	if fields[6].Hint.Widget != WidgetBool {
		t.Errorf("Crashed widget: got %v, want WidgetBool", fields[6].Hint.Widget)
	}
	if _, ok := fields[6].Float(); ok {
		t.Error("a bool field should not read as a number")
	}
}

func TestExtractFields_Rotation(t *testing.T) {
	fields := ExtractFields(components.Rotation{Heading: 1.5, Steer: -0.25})
	if len(fields) != 2 {
		t.Fatalf("fields: got %d, want 2", len(fields))
	}
	if fields[0].Hint.Widget != WidgetAngle {
		t.Errorf("Heading widget: got %v, want WidgetAngle", fields[0].Hint.Widget)
	}
	if got := fields[1].Hint.Text(fields[1].Value); got != "-0.250" {
		t.Errorf("Steer text: got %q, want -0.250", got)
	}
}

func TestExtractFields_AutoDetect(t *testing.T) {
	type sample struct {
		On     bool
		Speed  float32
		Rays   [3]float64
		Count  uint8 `inspect:",name:Count of things"`
		hidden int
	}

	fields := ExtractFields(sample{On: true, Speed: 2, Rays: [3]float64{0.1, 0.2, 0.3}, Count: 9})
	if len(fields) != 4 {
		t.Fatalf("fields: got %d, want 4", len(fields))
	}

	wantWidgets := []Widget{WidgetBool, WidgetLabel, WidgetBar, WidgetLabel}
	for i, w := range wantWidgets {
		if fields[i].Hint.Widget != w {
			t.Errorf("%s widget: got %v, want %v", fields[i].Name, fields[i].Hint.Widget, w)
		}
	}

	values, ok := fields[2].Floats()
	if !ok || len(values) != 3 || values[2] != 0.3 {
		t.Errorf("Rays: got %v, %v", values, ok)
	}
	if _, ok := fields[1].Floats(); ok {
		t.Error("a scalar should not read as a slice")
	}
	if v, ok := fields[3].Float(); !ok || v != 9 {
		t.Errorf("Count: got %v/%v, want 9", v, ok)
	}
	if fields[3].Label() != "Count of things" {
		t.Errorf("Count label: got %q", fields[3].Label())
	}
	if fields[1].Label() != "Speed" {
		t.Errorf("Speed label: got %q", fields[1].Label())
	}
}

func TestExtractFields_NonStruct(t *testing.T) {
	if fields := ExtractFields(42); fields != nil {
		t.Errorf("expected nil for a non-struct, got %v", fields)
	}
	var prog *components.Progress
	if fields := ExtractFields(prog); fields != nil {
		t.Errorf("expected nil for a nil pointer, got %v", fields)
	}
}
