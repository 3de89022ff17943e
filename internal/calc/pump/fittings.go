package pump

import (
	"sort"
	"strings"
)

// Equivalent lengths of fittings in pipe diameters (L/D).
var fittingCatalog = map[string]float64{
	"gate_valve_open":      8,
	"globe_valve_open":     340,
	"check_valve_swing":    100,
	"check_valve_lift":     600,
	"45_elbow_std":         16,
	"90_elbow_std":         30,
	"90_elbow_long_radius": 20,
	"tee_branch":           60,
	"tee_run":              20,
	"foot_valve_strainer":  420,
	"entrance_sharp":       0.5,
	"exit_loss":            1.0,
}

type Fitting struct {
	Tag   string  `json:"tag"`
	Title string  `json:"title"`
	LD    float64 `json:"l_d"`
}

// EquivalentLength returns the L/D ratio of a fitting type.
func EquivalentLength(tag string) (float64, bool) {
	ld, ok := fittingCatalog[tag]
	return ld, ok
}

// Fittings lists the catalog sorted by tag.
func Fittings() []Fitting {
	out := make([]Fitting, 0, len(fittingCatalog))
	for tag, ld := range fittingCatalog {
		out = append(out, Fitting{Tag: tag, Title: fittingTitle(tag), LD: ld})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func fittingTitle(tag string) string {
	words := strings.Split(tag, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
