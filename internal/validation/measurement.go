package validation

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Field names one body measurement.
type Field string

const (
	Height        Field = "height"
	Weight        Field = "weight"
	Bust          Field = "bust"
	Waist         Field = "waist"
	Hip           Field = "hip"
	Armpit        Field = "armpit"
	Bicep         Field = "bicep"
	Neck          Field = "neck"
	ShoulderWidth Field = "shoulderWidth"
	SleeveLength  Field = "sleeveLength"
	BackLength    Field = "backLength"
	LowerWaist    Field = "lowerWaist"
	WaistToFloor  Field = "waistToFloor"
)

// MeasurementErrorPrefix namespaces measurement keys in a draft's error map
// so they never collide with customer-info keys.
const MeasurementErrorPrefix = "measurement_"

// AllFields lists every measurement in display order.
var AllFields = []Field{
	Height, Weight, Bust, Waist, Hip, Armpit, Bicep, Neck,
	ShoulderWidth, SleeveLength, BackLength, LowerWaist, WaistToFloor,
}

// RequiredFields must be provided before the measurement step completes.
// The remaining fields are range-checked only when filled in.
var RequiredFields = []Field{Height, Weight, Bust, Waist, Hip, Neck, ShoulderWidth}

// Range is the accepted [Min, Max] interval for a measurement.
type Range struct {
	Min    float64           `yaml:"min" json:"min"`
	Max    float64           `yaml:"max" json:"max"`
	Unit   string            `yaml:"unit" json:"unit"`
	Labels map[string]string `yaml:"labels" json:"-"`
}

// Contains reports whether value lies inside the range, bounds included.
// NaN is never contained.
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

//go:embed ranges.yaml
var rangesYAML []byte

var measurementRanges = mustLoadRanges(rangesYAML)

func mustLoadRanges(doc []byte) map[Field]Range {
	ranges, err := loadRanges(doc)
	if err != nil {
		panic(err)
	}
	return ranges
}

func loadRanges(doc []byte) (map[Field]Range, error) {
	raw := make(map[string]Range)
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse measurement ranges: %w", err)
	}
	out := make(map[Field]Range, len(raw))
	for name, r := range raw {
		if r.Min > r.Max {
			return nil, fmt.Errorf("measurement %s: min %v exceeds max %v", name, r.Min, r.Max)
		}
		out[Field(name)] = r
	}
	for _, f := range AllFields {
		if _, ok := out[f]; !ok {
			return nil, fmt.Errorf("measurement %s: missing range", f)
		}
	}
	return out, nil
}

// RangeOf returns the configured range for a field.
func RangeOf(field Field) (Range, bool) {
	r, ok := measurementRanges[field]
	return r, ok
}

// IsField reports whether name is one of the 13 measurement fields.
func IsField(name string) bool {
	_, ok := measurementRanges[Field(name)]
	return ok
}

// ErrorKey returns the namespaced error-map key for a measurement.
func ErrorKey(field Field) string {
	return MeasurementErrorPrefix + string(field)
}

// ValidateMeasurementField returns a message naming the field, bounds and
// unit when value falls outside the field's range, or "".
func (v *Validator) ValidateMeasurementField(field Field, value float64) string {
	r, ok := v.ranges[field]
	if !ok {
		return v.printer.Sprintf(msgUnknownField, string(field))
	}
	if r.Contains(value) {
		return ""
	}
	return v.printer.Sprintf(msgOutOfRange, v.measurementLabel(field, r), r.Min, r.Max, r.Unit)
}

// ValidateMeasurements checks a full measurement set: required fields must be
// non-zero and in range, optional fields only when non-zero. The result is
// keyed with ErrorKey.
func (v *Validator) ValidateMeasurements(values map[Field]float64) map[string]string {
	out := make(map[string]string)
	required := make(map[Field]bool, len(RequiredFields))
	for _, f := range RequiredFields {
		required[f] = true
	}
	for _, f := range AllFields {
		value := values[f]
		if value == 0 {
			if required[f] {
				out[ErrorKey(f)] = v.printer.Sprintf(msgRequired, v.measurementLabel(f, v.ranges[f]))
			}
			continue
		}
		if msg := v.ValidateMeasurementField(f, value); msg != "" {
			out[ErrorKey(f)] = msg
		}
	}
	return out
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

func (v *Validator) measurementLabel(field Field, r Range) string {
	if v.tag != language.English {
		base, _ := v.tag.Base()
		if l, ok := r.Labels[base.String()]; ok {
			return l
		}
	}
	words := camelBoundary.ReplaceAllString(string(field), "$1 $2")
	// a Caser is stateful, so each call gets its own
	return cases.Title(language.English).String(strings.ToLower(words))
}
