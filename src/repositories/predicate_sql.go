package repositories

import (
	"fmt"
	"strings"

	"qcdispatch/src/search"
)

// columnExprs maps predicate fields to SQL expressions over the
// dispatched_tasks table (aliased t) with personnel joined as p. Text
// comparisons on non-text columns go through a cast so "as-text" substring
// matching works the same way the in-memory evaluation does.
var columnExprs = map[search.Field]string{
	search.FieldID:            "CAST(t.id AS TEXT)",
	search.FieldName:          "t.name",
	search.FieldDescription:   "t.description",
	search.FieldNotes:         "t.notes",
	search.FieldDispatchID:    "CAST(t.dispatch_id AS TEXT)",
	search.FieldDispatchTime:  "CAST(t.dispatch_time AS TEXT)",
	search.FieldDueDate:       "CAST(t.due_date AS TEXT)",
	search.FieldPersonnelName: "COALESCE(p.name, '')",
	search.FieldFormID:        "t.form_id",
	search.FieldStatus:        "t.status",
}

// sortColumns whitelists the sortable columns for task search.
var sortColumns = map[string]string{
	"id":            "t.id",
	"name":          "t.name",
	"dispatch_time": "t.dispatch_time",
	"due_date":      "t.due_date",
	"status":        "t.status",
	"created_at":    "t.created_at",
}

// RenderPredicate translates a predicate tree into a SQL condition with
// positional arguments, starting at $1.
func RenderPredicate(p search.Predicate) (string, []interface{}, error) {
	b := &predicateBuilder{}
	clause, err := b.render(p)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

type predicateBuilder struct {
	args []interface{}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

func (b *predicateBuilder) placeholder(value interface{}) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *predicateBuilder) render(p search.Predicate) (string, error) {
	switch p.Kind {
	case search.KindTrue:
		return "TRUE", nil
	case search.KindLeaf:
		return b.renderLeaf(p.Leaf)
	case search.KindAnd, search.KindOr:
		op := " AND "
		if p.Kind == search.KindOr {
			op = " OR "
		}
		parts := make([]string, 0, len(p.Parts))
		for _, part := range p.Parts {
			clause, err := b.render(part)
			if err != nil {
				return "", err
			}
			parts = append(parts, clause)
		}
		return "(" + strings.Join(parts, op) + ")", nil
	default:
		return "", fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
}

func (b *predicateBuilder) renderLeaf(leaf *search.Leaf) (string, error) {
	expr, ok := columnExprs[leaf.Field]
	if !ok {
		return "", fmt.Errorf("unknown search field %q", leaf.Field)
	}

	switch leaf.Op {
	case search.OpContains:
		// The keyword is a literal substring, so LIKE metacharacters in it
		// must not act as wildcards.
		return expr + " ILIKE '%' || " + b.placeholder(escapeLike(leaf.Value)) + ` || '%' ESCAPE '\'`, nil
	case search.OpEq:
		return expr + " = " + b.placeholder(leaf.Value), nil
	case search.OpIn:
		return expr + " = ANY(" + b.placeholder(leaf.Values) + ")", nil
	default:
		return "", fmt.Errorf("unknown predicate op %q", leaf.Op)
	}
}
