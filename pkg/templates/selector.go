package templates

import "strings"

type rule struct {
	keywords [2]string
	kind     Kind
}

// Checked in order; the first rule whose keywords both occur wins.
var rules = []rule{
	{keywords: [2]string{"sales", "sum"}, kind: KindSalesSummary},
	{keywords: [2]string{"markdown", "html"}, kind: KindMarkdownRender},
	{keywords: [2]string{"github", "user"}, kind: KindAccountLookup},
}

const defaultKind = KindSalesSummary

// Match reports the kind of the first rule the brief satisfies. ok is false
// when no rule matched and kind is the default.
func Match(brief string) (kind Kind, ok bool) {
	lower := strings.ToLower(brief)
	for _, r := range rules {
		if strings.Contains(lower, r.keywords[0]) && strings.Contains(lower, r.keywords[1]) {
			return r.kind, true
		}
	}
	return defaultKind, false
}

// SelectKind maps a brief to a template kind. Every brief maps to exactly one.
func SelectKind(brief string) Kind {
	kind, _ := Match(brief)
	return kind
}

func Select(brief string) ProjectTemplate {
	t, _ := ByKind(SelectKind(brief))
	return t
}
