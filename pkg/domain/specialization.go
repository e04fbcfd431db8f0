package domain

import "strings"

// Specialization is an inspector's technical focus area.
type Specialization string

const (
	SpecializationStruktur           Specialization = "struktur"
	SpecializationArsitektur         Specialization = "arsitektur"
	SpecializationMEP                Specialization = "mep"
	SpecializationBuildingInspection Specialization = "building_inspection"
)

// specializationAliases maps legacy and colloquial spellings onto the four
// canonical values. Keys are lower-cased.
var specializationAliases = map[string]Specialization{
	"struktur":            SpecializationStruktur,
	"structural":          SpecializationStruktur,
	"structure":           SpecializationStruktur,
	"arsitektur":          SpecializationArsitektur,
	"arsitek":             SpecializationArsitektur,
	"architecture":        SpecializationArsitektur,
	"architectural":       SpecializationArsitektur,
	"mep":                 SpecializationMEP,
	"mekanikal":           SpecializationMEP,
	"elektrikal":          SpecializationMEP,
	"mechanical":          SpecializationMEP,
	"electrical":          SpecializationMEP,
	"plumbing":            SpecializationMEP,
	"building_inspection": SpecializationBuildingInspection,
	"supervisor":          SpecializationBuildingInspection,
	"pengawas":            SpecializationBuildingInspection,
}

// ParseSpecialization resolves a raw value, including legacy aliases.
// The boolean is false when the value is empty or unrecognized.
func ParseSpecialization(s string) (Specialization, bool) {
	sp, ok := specializationAliases[strings.ToLower(strings.TrimSpace(s))]
	return sp, ok
}

// NormalizeSpecialization is ParseSpecialization with the supervisor profile
// as the fallback for unknown or absent values.
func NormalizeSpecialization(s string) Specialization {
	if sp, ok := ParseSpecialization(s); ok {
		return sp
	}
	return SpecializationBuildingInspection
}

func (s Specialization) String() string {
	return string(s)
}
