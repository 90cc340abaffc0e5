package search

import "strings"

// Field names the task attributes a predicate may test. Storage adapters map
// them onto their native columns; Matches evaluates them in memory.
type Field string

const (
	FieldID            Field = "id"
	FieldName          Field = "name"
	FieldDescription   Field = "description"
	FieldNotes         Field = "notes"
	FieldDispatchID    Field = "dispatch_id"
	FieldDispatchTime  Field = "dispatch_time"
	FieldDueDate       Field = "due_date"
	FieldPersonnelName Field = "personnel_name"
	FieldFormID        Field = "form_id"
	FieldStatus        Field = "status"
)

type Op string

const (
	OpContains Op = "CONTAINS" // case-insensitive substring
	OpEq       Op = "EQ"
	OpIn       Op = "IN"
)

type Kind string

const (
	KindTrue Kind = "TRUE"
	KindLeaf Kind = "LEAF"
	KindAnd  Kind = "AND"
	KindOr   Kind = "OR"
)

// Leaf is a single typed comparison.
type Leaf struct {
	Field  Field
	Op     Op
	Value  string
	Values []string
}

// Predicate is a declarative AND/OR tree over leaf comparisons. It never
// executes a query itself; repositories translate it into their query form.
type Predicate struct {
	Kind  Kind
	Leaf  *Leaf
	Parts []Predicate
}

// True returns the tautological predicate. Callers combining it with other
// filters via And keep those filters intact.
func True() Predicate {
	return Predicate{Kind: KindTrue}
}

func Contains(field Field, value string) Predicate {
	return Predicate{Kind: KindLeaf, Leaf: &Leaf{Field: field, Op: OpContains, Value: value}}
}

func Eq(field Field, value string) Predicate {
	return Predicate{Kind: KindLeaf, Leaf: &Leaf{Field: field, Op: OpEq, Value: value}}
}

func In(field Field, values []string) Predicate {
	return Predicate{Kind: KindLeaf, Leaf: &Leaf{Field: field, Op: OpIn, Values: values}}
}

// And combines predicates conjunctively. Tautologies are dropped; an empty
// conjunction is the tautology.
func And(parts ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(parts))
	for _, p := range parts {
		if p.Kind == KindTrue {
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return True()
	case 1:
		return kept[0]
	default:
		return Predicate{Kind: KindAnd, Parts: kept}
	}
}

// Or combines predicates disjunctively. A tautological part absorbs the rest.
func Or(parts ...Predicate) Predicate {
	for _, p := range parts {
		if p.Kind == KindTrue {
			return True()
		}
	}
	switch len(parts) {
	case 1:
		return parts[0]
	default:
		return Predicate{Kind: KindOr, Parts: parts}
	}
}

// Matches evaluates the predicate against a flat field view of one task.
// It is the reference semantics the storage translations must agree with.
func (p Predicate) Matches(fields map[Field]string) bool {
	switch p.Kind {
	case KindTrue:
		return true
	case KindLeaf:
		return p.Leaf.matches(fields)
	case KindAnd:
		for _, part := range p.Parts {
			if !part.Matches(fields) {
				return false
			}
		}
		return true
	case KindOr:
		for _, part := range p.Parts {
			if part.Matches(fields) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (l *Leaf) matches(fields map[Field]string) bool {
	actual, ok := fields[l.Field]
	if !ok {
		return false
	}
	switch l.Op {
	case OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(l.Value))
	case OpEq:
		return actual == l.Value
	case OpIn:
		for _, v := range l.Values {
			if actual == v {
				return true
			}
		}
		return false
	default:
		return false
	}
}
