// internal/filter/kind.go
package filter

// Kind identifies which predicate shape a compiled condition represents.
type Kind int

const (
	KindUnknown Kind = iota
	KindEqual
	KindInSet
	KindNotInSet
	KindIsNull
	KindIsNotNull
	KindContains
	KindPrefix
	KindSuffix
)

// Operator keys recognized inside a condition body.
const (
	KeyIn        = "in"
	KeyNotIn     = "not_in"
	KeyIs        = "is"
	KeyIsNot     = "is_not"
	KeyLike      = "like"
	KeyLikeLeft  = "like_left"
	KeyLikeRight = "like_right"
)

// operatorKeys lists recognized keys in resolution priority order.
// When a body carries several, the earliest entry decides the kind.
var operatorKeys = []struct {
	key  string
	kind Kind
}{
	{KeyIn, KindInSet},
	{KeyNotIn, KindNotInSet},
	{KeyIs, KindIsNull},
	{KeyIsNot, KindIsNotNull},
	{KeyLike, KindContains},
	{KeyLikeLeft, KindSuffix},
	{KeyLikeRight, KindPrefix},
}

// Builder operators emitted by Where.
const (
	OpEqual = "="
	OpLike  = "like"
)

func (k Kind) String() string {
	switch k {
	case KindEqual:
		return "equal"
	case KindInSet:
		return "in"
	case KindNotInSet:
		return "not_in"
	case KindIsNull:
		return "is_null"
	case KindIsNotNull:
		return "is_not_null"
	case KindContains:
		return "contains"
	case KindPrefix:
		return "prefix"
	case KindSuffix:
		return "suffix"
	default:
		return "unknown"
	}
}

// IsPattern reports whether the kind compiles to a case-folded LIKE match.
func (k Kind) IsPattern() bool {
	return k == KindContains || k == KindPrefix || k == KindSuffix
}

// HasOperand reports whether conditions of this kind carry a value.
func (k Kind) HasOperand() bool {
	switch k {
	case KindIsNull, KindIsNotNull, KindUnknown:
		return false
	default:
		return true
	}
}

// pattern wraps a folded operand with LIKE wildcards for the pattern kind.
func (k Kind) pattern(operand string) string {
	switch k {
	case KindContains:
		return "%" + operand + "%"
	case KindPrefix:
		return operand + "%"
	case KindSuffix:
		return "%" + operand
	default:
		return operand
	}
}
