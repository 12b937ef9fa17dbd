package i18n

import (
	"fmt"
	"maps"
	"strings"
)

// M is a shorthand for placeholder values.
type M map[string]any

// ReplacePlaceholders substitutes {{name}} markers with values from placeholders.
// Unknown markers are left as they are.
func ReplacePlaceholders(template string, placeholders M) string {
	if len(placeholders) == 0 || !strings.Contains(template, "{{") {
		return template
	}

	pairs := make([]string, 0, len(placeholders)*2)
	for key, value := range placeholders {
		pairs = append(pairs, "{{"+key+"}}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func mergePlaceholders(placeholders []M) M {
	merged := make(M)
	for _, p := range placeholders {
		maps.Copy(merged, p)
	}
	return merged
}
