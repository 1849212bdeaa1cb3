package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetAngle
	WidgetBool
	WidgetSkip
)

var widgetNames = map[string]Widget{
	"label": WidgetLabel,
	"bar":   WidgetBar,
	"angle": WidgetAngle,
	"bool":  WidgetBool,
	"skip":  WidgetSkip,
}

// Hint is a parsed `inspect` struct tag:
//
//	inspect:"<widget>[,key:value...]"
//
// Keys are name (display label), fmt (printf verb), min and max (bar range)
// and labels ("|"-separated captions for bar groups). Unknown widgets fall
// back to auto detection and unknown keys are ignored.
type Hint struct {
	Widget Widget
	Name   string
	Format string
	Min    float32
	Max    float32
	Labels []string
}

// ParseHint parses an inspect tag. Range defaults to [0, 1].
func ParseHint(tag string) Hint {
	h := Hint{Max: 1}
	widget, rest, _ := strings.Cut(tag, ",")
	h.Widget = widgetNames[strings.TrimSpace(widget)]

	for _, opt := range strings.Split(rest, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(opt), ":")
		if !ok {
			continue
		}
		switch key {
		case "name":
			h.Name = val
		case "fmt":
			h.Format = val
		case "min":
			h.Min = parseBound(val, h.Min)
		case "max":
			h.Max = parseBound(val, h.Max)
		case "labels":
			for _, l := range strings.Split(val, "|") {
				h.Labels = append(h.Labels, strings.TrimSpace(l))
			}
		}
	}
	return h
}

func parseBound(s string, def float32) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// Text renders v with the hint's printf verb. Floats default to two
// decimals.
func (h Hint) Text(v any) string {
	if h.Format != "" {
		return fmt.Sprintf(h.Format, v)
	}
	switch v.(type) {
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprint(v)
}

// labelsFor returns the bar captions when there is exactly one per value.
func (h Hint) labelsFor(n int) []string {
	if len(h.Labels) != n {
		return nil
	}
	return h.Labels
}

// Field is one exported struct field ready to draw.
type Field struct {
	Name  string
	Hint  Hint
	Value any

	num     float32
	numeric bool
	nums    []float32
}

// Label is the tag's name, or the Go field name.
func (f Field) Label() string {
	if f.Hint.Name != "" {
		return f.Hint.Name
	}
	return f.Name
}

// Float returns the value of a numeric field.
func (f Field) Float() (float32, bool) {
	return f.num, f.numeric
}

// Floats returns the values of a numeric array or slice field.
func (f Field) Floats() ([]float32, bool) {
	return f.nums, f.nums != nil
}

// ExtractFields lists the exported, non-skipped fields of a struct or a
// pointer to one, in declaration order. Anything else yields nil.
func ExtractFields(v any) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	var fields []Field
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		h := ParseHint(sf.Tag.Get("inspect"))
		if h.Widget == WidgetSkip {
			continue
		}

		fv := rv.Field(i)
		f := Field{Name: sf.Name, Hint: h, Value: fv.Interface()}
		f.num, f.numeric = toFloat(fv)
		f.nums = toFloats(fv)
		if f.Hint.Widget == WidgetAuto {
			f.Hint.Widget = autoWidget(fv.Kind())
		}
		fields = append(fields, f)
	}
	return fields
}

func autoWidget(k reflect.Kind) Widget {
	switch k {
	case reflect.Bool:
		return WidgetBool
	case reflect.Array, reflect.Slice:
		return WidgetBar
	}
	return WidgetLabel
}

func toFloat(v reflect.Value) (float32, bool) {
	switch {
	case v.CanFloat():
		return float32(v.Float()), true
	case v.CanInt():
		return float32(v.Int()), true
	case v.CanUint():
		return float32(v.Uint()), true
	}
	return 0, false
}

// toFloats converts a numeric array or slice, or returns nil.
func toFloats(v reflect.Value) []float32 {
	if v.Kind() != reflect.Array && v.Kind() != reflect.Slice {
		return nil
	}
	out := make([]float32, v.Len())
	for i := range out {
		f, ok := toFloat(v.Index(i))
		if !ok {
			return nil
		}
		out[i] = f
	}
	return out
}

// Float32s converts controller values for display.
func Float32s(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
