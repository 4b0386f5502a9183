package templates

import (
	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

type Kind string

const (
	KindSalesSummary   Kind = "sales-summary"
	KindMarkdownRender Kind = "markdown-render"
	KindAccountLookup  Kind = "account-lookup"
)

func (k Kind) String() string {
	return string(k)
}

type Input struct {
	Brief       string
	Checks      []string
	Attachments map[string][]byte
}

// ProjectTemplate produces the static site for one task family. The set of
// implementations is closed: see Select.
type ProjectTemplate interface {
	Kind() Kind
	GenerateRound1(in Input) (entities.FileSet, error)
	GenerateRound2(in Input, prior entities.FileSet) (entities.FileSet, error)
}

// ByKind returns the template registered for kind.
func ByKind(kind Kind) (ProjectTemplate, bool) {
	switch kind {
	case KindSalesSummary:
		return SalesSummary{}, true
	case KindMarkdownRender:
		return MarkdownRender{}, true
	case KindAccountLookup:
		return AccountLookup{}, true
	}
	return nil, false
}
