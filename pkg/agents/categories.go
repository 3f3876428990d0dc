package agents

import (
	"strings"

	"github.com/chasm-hq/chasm/pkg/knowledge"
)

// categoryKeywords maps common component mentions to a category. Longer
// keywords are not needed; substring matching handles variants like
// "battery pack" or "main camera".
var categoryKeywords = []struct {
	keyword  string
	category knowledge.ComponentCategory
}{
	{"battery", knowledge.CategoryElectrical},
	{"motor", knowledge.CategoryElectrical},
	{"power", knowledge.CategoryElectrical},
	{"charger", knowledge.CategoryElectrical},
	{"esc", knowledge.CategoryElectrical},
	{"sensor", knowledge.CategoryElectrical},
	{"camera", knowledge.CategoryElectrical},
	{"screen", knowledge.CategoryElectrical},
	{"gimbal", knowledge.CategoryMechanical},
	{"hinge", knowledge.CategoryMechanical},
	{"propeller", knowledge.CategoryMechanical},
	{"arm", knowledge.CategoryMechanical},
	{"landing gear", knowledge.CategoryMechanical},
	{"frame", knowledge.CategoryMechanical},
	{"firmware", knowledge.CategoryFirmware},
	{"software", knowledge.CategoryFirmware},
	{"app", knowledge.CategoryFirmware},
	{"box", knowledge.CategoryPackaging},
	{"packaging", knowledge.CategoryPackaging},
}

// GuessCategory maps a free-text component name to a category on a
// best-effort basis.
func GuessCategory(componentName string) knowledge.ComponentCategory {
	lower := strings.ToLower(componentName)
	for _, entry := range categoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.category
		}
	}
	return knowledge.CategoryUnknown
}
