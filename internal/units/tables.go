// Package units holds the closed, version-controlled lookup tables that
// drive unit canonicalization, INN synonym resolution and pharmaceutical
// form normalization. These tables determine the system's correctness;
// they are reviewed and diffed per release like any other source file.
package units

import (
	"sort"
	"strings"
)

// FormGroup is the coarse administration-route category used to prevent
// clinically dangerous cross-route matches.
type FormGroup string

const (
	OralSolid     FormGroup = "ORAL_SOLID"
	OralLiquid    FormGroup = "ORAL_LIQUID"
	Injectable    FormGroup = "INJECTABLE"
	Topical       FormGroup = "TOPICAL"
	Ophthalmic    FormGroup = "OPHTHALMIC"
	Inhalation    FormGroup = "INHALATION"
	RectalVaginal FormGroup = "RECTAL_VAGINAL"
	Other         FormGroup = "OTHER"
)

// UnitCanonical maps a lowercased source spelling to its canonical output.
// Compound forms (slash-separated) are matched before simple forms by
// consulting UnitPatternsOrdered, which sorts this map longest-key-first.
var UnitCanonical = map[string]string{
	// Mass
	"mg":          "mg",
	"g":           "g",
	"mcg":         "mcg",
	"µg":          "mcg",
	"microgramo":  "mcg",
	"microgramos": "mcg",
	"ug":          "mcg",
	// International units
	"ui":  "IU",
	"iu":  "IU",
	"u":   "IU",
	"usp": "IU",
	"miu": "mIU",
	// Volume
	"ml": "mL",
	"l":  "L",
	// Electrolytes
	"meq": "mEq",
	"mmol": "mmol",
	// Percentage
	"%": "%",
	// Compound: mass / volume
	"mg/ml":   "mg/mL",
	"mg/dl":   "mg/dL",
	"mg/l":    "mg/L",
	"mg/g":    "mg/g",
	"mg/kg":   "mg/kg",
	"g/ml":    "g/mL",
	"g/dl":    "g/dL",
	"g/l":     "g/L",
	"g/g":     "g/g",
	"mcg/ml":  "mcg/mL",
	"ug/ml":   "mcg/mL",
	"µg/ml":   "mcg/mL",
	"mcg/kg":  "mcg/kg",
	"ui/ml":   "IU/mL",
	"iu/ml":   "IU/mL",
	"ui/g":    "IU/g",
	"iu/g":    "IU/g",
	"meq/ml":  "mEq/mL",
	"meq/l":   "mEq/L",
	"mmol/ml": "mmol/mL",
	"mmol/l":  "mmol/L",
}

// UnitEntry is one (source, canonical) pair from UnitCanonical.
type UnitEntry struct {
	Source    string
	Canonical string
}

// UnitPatternsOrdered is UnitCanonical sorted longest-source-first so
// greedy regex alternation matches compound units (e.g. "mg/mL") before
// their simple prefixes (e.g. "mg").
var UnitPatternsOrdered = orderedByKeyLengthDesc(UnitCanonical)

// InnSynonyms maps a lowercased, accent-stripped source spelling to the
// canonical INN per the catalog's regional norm (e.g. the Colombian
// INVIMA catalog spells the analgesic "acetaminofen", not "paracetamol").
var InnSynonyms = map[string]string{
	"vitamina d3":     "colecalciferol",
	"vitamin d3":      "colecalciferol",
	"cholecalciferol": "colecalciferol",
	"colecalciferol":  "colecalciferol",
	"vitamina b12":    "cianocobalamina",
	"cianocobalamina": "cianocobalamina",
	"vitamina b1":     "tiamina",
	"tiamina":         "tiamina",
	"vitamina c":      "acido ascorbico",
	"acido ascorbico": "acido ascorbico",
	"acido folico":    "acido folico",
	"folato":          "acido folico",

	"paracetamol":  "acetaminofen",
	"acetaminofen": "acetaminofen",

	"amoxicilina":      "amoxicilina",
	"amoxycillin":       "amoxicilina",
	"acido clavulanico": "acido clavulanico",
	"ac clavulanico":    "acido clavulanico",
	"ac. clavulanico":   "acido clavulanico",
	"clavulanato":       "acido clavulanico",
	"azitromicina":      "azitromicina",
	"claritromicina":    "claritromicina",
	"ciprofloxacino":    "ciprofloxacino",
	"ciprofloxacina":    "ciprofloxacino",
	"metronidazol":      "metronidazol",

	"abacavir":  "abacavir",
	"aciclovir": "aciclovir",
	"acyclovir": "aciclovir",

	"codeina": "codeina",
	"codeína": "codeina",
	"tramadol": "tramadol",
	"morfina":  "morfina",

	"agua destilada":          "agua para preparaciones inyectables",
	"agua esteril":            "agua para preparaciones inyectables",
	"agua destilada esteril":  "agua para preparaciones inyectables",
}

// FormSynonyms maps a free-text pharmaceutical form spelling to its
// canonical form name.
var FormSynonyms = map[string]string{
	"tableta":                         "tableta",
	"tabletas":                        "tableta",
	"tab":                             "tableta",
	"tab.":                            "tableta",
	"comprimido":                      "tableta",
	"comprimidos":                     "tableta",
	"tableta recubierta":              "tableta recubierta",
	"tableta dispersable":             "tableta dispersable",
	"tableta efervescente":            "tableta efervescente",
	"capsula":                         "capsula",
	"capsulas":                        "capsula",
	"cap":                             "capsula",
	"cap.":                            "capsula",
	"capsula de liberacion prolongada": "capsula de liberacion prolongada",
	"capsula de liberacion modificada": "capsula de liberacion modificada",
	"gragea":                          "gragea",
	"ovulo":                           "ovulo",

	"solucion oral":      "solucion oral",
	"sol. oral":          "solucion oral",
	"solucion":           "solucion oral",
	"suspension oral":    "suspension oral",
	"suspension":         "suspension oral",
	"jarabe":             "jarabe",
	"syrup":              "jarabe",
	"elixir":             "elixir",
	"emulsion oral":      "emulsion oral",
	"gotas orales":       "gotas orales",

	"solucion inyectable":                "solucion inyectable",
	"solucion para inyeccion":            "solucion inyectable",
	"sol. inyectable":                    "solucion inyectable",
	"solucion para infusion":             "solucion para infusion",
	"solucion para infusion intravenosa": "solucion para infusion",
	"polvo para solucion inyectable":     "polvo para solucion inyectable",
	"polvo para reconstitucion":          "polvo para reconstitucion",
	"liofilizado":                        "polvo para reconstitucion",
	"suspension inyectable":              "suspension inyectable",

	"unguento topico":      "unguento",
	"unguento":             "unguento",
	"ungüento":             "unguento",
	"ungüento topico":      "unguento",
	"crema topica":         "crema",
	"crema":                "crema",
	"gel topico":           "gel topico",
	"gel":                  "gel topico",
	"solucion topica":      "solucion topica",
	"locion":               "locion",
	"espuma topica":        "espuma topica",
	"parche transdermico":  "parche transdermico",

	"solucion oftalmica":    "solucion oftalmica",
	"colirio":               "solucion oftalmica",
	"gotas oftalmicas":      "solucion oftalmica",
	"suspension oftalmica":  "suspension oftalmica",

	"inhalador":              "inhalador",
	"aerosol":                "inhalador",
	"spray nasal":            "spray nasal",
	"spray":                  "inhalador",
	"polvo para inhalacion":  "polvo para inhalacion",

	"supositorio":    "supositorio",
	"supositorios":   "supositorio",
	"ovulo vaginal":  "ovulo vaginal",
}

// FormGroupOf maps a canonical form name to its administration-route
// FormGroup.
var FormGroupOf = map[string]FormGroup{
	"tableta":                          OralSolid,
	"tableta recubierta":               OralSolid,
	"tableta dispersable":              OralSolid,
	"tableta efervescente":             OralSolid,
	"capsula":                          OralSolid,
	"capsula de liberacion prolongada": OralSolid,
	"capsula de liberacion modificada": OralSolid,
	"gragea":                           OralSolid,

	"solucion oral":   OralLiquid,
	"suspension oral": OralLiquid,
	"jarabe":          OralLiquid,
	"elixir":          OralLiquid,
	"emulsion oral":   OralLiquid,
	"gotas orales":    OralLiquid,

	"solucion inyectable":            Injectable,
	"solucion para infusion":         Injectable,
	"polvo para solucion inyectable": Injectable,
	"polvo para reconstitucion":      Injectable,
	"suspension inyectable":          Injectable,

	"unguento":            Topical,
	"crema":                Topical,
	"gel topico":           Topical,
	"solucion topica":      Topical,
	"locion":               Topical,
	"espuma topica":        Topical,
	"parche transdermico":  Topical,

	"solucion oftalmica":   Ophthalmic,
	"suspension oftalmica": Ophthalmic,

	"inhalador":             Inhalation,
	"spray nasal":           Inhalation,
	"polvo para inhalacion": Inhalation,

	"supositorio":   RectalVaginal,
	"ovulo vaginal":  RectalVaginal,
	"ovulo":          RectalVaginal,
}

// KnownFormsSorted lists every key of FormSynonyms sorted longest-first,
// for greedy right-anchored form matching.
var KnownFormsSorted = sortedByLengthDesc(keysOf(FormSynonyms))

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedByLengthDesc(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func orderedByKeyLengthDesc(m map[string]string) []UnitEntry {
	out := make([]UnitEntry, 0, len(m))
	for k, v := range m {
		out = append(out, UnitEntry{Source: k, Canonical: v})
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i].Source) > len(out[j].Source) })
	return out
}

// CanonicalUnit returns the canonical spelling for rawUnit, falling back to
// its uppercased form when it is not in the table.
func CanonicalUnit(rawUnit string) string {
	trimmed := strings.TrimSpace(rawUnit)
	if c, ok := UnitCanonical[strings.ToLower(trimmed)]; ok {
		return c
	}
	return strings.ToUpper(trimmed)
}
