package search

import (
	"context"
	"strings"

	"qcdispatch/src/utils"
)

// FormCatalog resolves a keyword against the hierarchical form tree and
// returns the matching node identifiers. Resolution happens before
// compilation; the compiler only receives the resolved IDs.
type FormCatalog interface {
	FindNodeIDsByKeyword(ctx context.Context, keyword string) ([]string, error)
}

// StateVocabulary enumerates the task state codes with their human-readable
// labels.
type StateVocabulary interface {
	AllStateCodeToLabel(ctx context.Context) (map[string]string, error)
}

// Compiler expands one keyword into a multi-field predicate over dispatched
// tasks. It is purely declarative and storage-agnostic.
type Compiler struct {
	vocab StateVocabulary
}

func NewCompiler(vocab StateVocabulary) *Compiler {
	return &Compiler{vocab: vocab}
}

// Compile builds the keyword predicate. An empty keyword yields the
// tautological predicate so callers can AND it with other filters without the
// keyword suppressing them. resolvedFormIDs carry the Form Catalog hits for
// the same keyword; when empty that clause contributes nothing.
func (c *Compiler) Compile(ctx context.Context, keyword string, resolvedFormIDs []string) Predicate {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return True()
	}

	clauses := []Predicate{
		Contains(FieldID, keyword),
		Contains(FieldName, keyword),
		Contains(FieldDescription, keyword),
		Contains(FieldNotes, keyword),
		Contains(FieldDispatchID, keyword),
		Contains(FieldDispatchTime, keyword),
		Contains(FieldDueDate, keyword),
		Contains(FieldPersonnelName, keyword),
	}

	if len(resolvedFormIDs) > 0 {
		clauses = append(clauses, In(FieldFormID, resolvedFormIDs))
	}

	if codes := c.matchingStateCodes(ctx, keyword); len(codes) > 0 {
		clauses = append(clauses, In(FieldStatus, codes))
	}

	return Or(clauses...)
}

// DispatchIDFilter is the equality predicate on the owning dispatch. Callers
// combine it with the keyword predicate via And.
func DispatchIDFilter(dispatchID string) Predicate {
	return Eq(FieldDispatchID, dispatchID)
}

// matchingStateCodes resolves the keyword against the state vocabulary. When
// the vocabulary is unavailable the clause is dropped: the search still runs
// over the locally evaluable fields.
func (c *Compiler) matchingStateCodes(ctx context.Context, keyword string) []string {
	if c.vocab == nil {
		return nil
	}

	labels, err := c.vocab.AllStateCodeToLabel(ctx)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).
			Warn("state vocabulary unavailable, skipping state clause")
		return nil
	}

	lowered := strings.ToLower(keyword)
	var codes []string
	for code, label := range labels {
		if strings.Contains(strings.ToLower(label), lowered) {
			codes = append(codes, code)
		}
	}
	return codes
}
