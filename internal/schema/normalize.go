package schema

import (
	"strings"
	"unicode"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var separators = strings.NewReplacer(" ", "_", "-", "_", ".", "_")

// NormalizeColumn trims, lowercases and strips accents from a header, turning
// spaces and dashes into underscores: "Fecha Pedido" -> "fecha_pedido", "Año" -> "ano".
func NormalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "\ufeff")

	// transformers keep state, so a fresh chain is built for every call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = separators.Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}

	return strings.Trim(s, "_")
}

// Canonical normalizes a header and resolves known synonyms to the canonical name.
func (r *Registry) Canonical(name string) string {
	n := NormalizeColumn(name)
	if canonical, ok := r.synonyms[n]; ok {
		return canonical
	}
	return n
}

// CanonicalHeader maps every header to its canonical name. When two headers resolve
// to the same name, the first one wins and later ones are returned as "".
func (r *Registry) CanonicalHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))

	for i, h := range header {
		c := r.Canonical(h)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out[i] = c
	}

	return out
}

// Detect picks the first category, in declaration order, whose detect column
// sets are fully present among columns.
func (r *Registry) Detect(columns []string) domain.Category {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	for _, c := range r.categories {
		for _, set := range c.Detect {
			if containsAll(present, set) {
				return c.Name
			}
		}
	}

	return domain.CategoryUnknown
}

func containsAll(present map[string]bool, columns []string) bool {
	for _, c := range columns {
		if !present[c] {
			return false
		}
	}
	return true
}
