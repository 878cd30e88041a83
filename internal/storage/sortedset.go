package storage

import "sort"

// SortedSet keeps members ordered by (score, name) with unique names.
// It is not safe for concurrent use, the Keyspace lock guards it
type SortedSet struct {
	members []Member           // ordered by Member.less
	scores  map[string]float64 // name - score
}

// NewSortedSet creates an empty sorted set
func NewSortedSet() *SortedSet {
	return &SortedSet{
		scores: make(map[string]float64),
	}
}

// Add inserts member or moves it to the position of its new score.
// Returns 1 if the member is new and 0 if it already existed
func (z *SortedSet) Add(score float64, name string) int {
	added := 1
	if old, ok := z.scores[name]; ok {
		if old == score {
			return 0
		}
		z.remove(z.search(Member{Score: old, Name: name}))
		added = 0
	}

	m := Member{Score: score, Name: name}
	pos := z.search(m)

	z.members = append(z.members, Member{})
	copy(z.members[pos+1:], z.members[pos:])
	z.members[pos] = m
	z.scores[name] = score

	return added
}

// Score returns the score of member
func (z *SortedSet) Score(name string) (float64, bool) {
	s, ok := z.scores[name]
	return s, ok
}

// Rank returns the 0-based position of member
func (z *SortedSet) Rank(name string) (int, bool) {
	score, ok := z.scores[name]
	if !ok {
		return 0, false
	}
	return z.search(Member{Score: score, Name: name}), true
}

// Card returns the number of members
func (z *SortedSet) Card() int {
	return len(z.members)
}

// Range returns names in positions [start, stop]. Negative indices address
// len+i, both ends are clamped and an inverted range is empty
func (z *SortedSet) Range(start, stop int) []string {
	n := len(z.members)

	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}

	if start > stop || start >= n {
		return []string{}
	}

	names := make([]string, 0, stop-start+1)
	for _, m := range z.members[start : stop+1] {
		names = append(names, m.Name)
	}
	return names
}

// Members returns a copy of the ordered members
func (z *SortedSet) Members() []Member {
	out := make([]Member, len(z.members))
	copy(out, z.members)
	return out
}

func (z *SortedSet) clone() *SortedSet {
	c := &SortedSet{
		members: z.Members(),
		scores:  make(map[string]float64, len(z.scores)),
	}
	for name, score := range z.scores {
		c.scores[name] = score
	}
	return c
}

// search returns the index of the first member not less than m
func (z *SortedSet) search(m Member) int {
	return sort.Search(len(z.members), func(i int) bool {
		return !z.members[i].less(m)
	})
}

func (z *SortedSet) remove(i int) {
	copy(z.members[i:], z.members[i+1:])
	z.members = z.members[:len(z.members)-1]
}
