package storage

type DataType byte

const (
	TypeString DataType = iota + 1
	TypeZSet
)

// Entity is the tagged container for a value. Only the field matching Type is meaningful
type Entity struct {
	Type DataType
	Str  string
	ZSet *SortedSet
}

// NewStringEntity wraps a scalar value
func NewStringEntity(s string) Entity {
	return Entity{Type: TypeString, Str: s}
}

// NewZSetEntity wraps a sorted set
func NewZSetEntity(z *SortedSet) Entity {
	return Entity{Type: TypeZSet, ZSet: z}
}

// Member is a single element of a sorted set
type Member struct {
	Score float64
	Name  string
}

// less reports whether m sorts before other: score first, then name
func (m Member) less(other Member) bool {
	if m.Score != other.Score {
		return m.Score < other.Score
	}
	return m.Name < other.Name
}
