package service

import "sort"

// ProtectedSet 启动时确定、之后只读
type ProtectedSet struct{ ids map[string]struct{} }

func NewProtectedSet(ids ...string) ProtectedSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = struct{}{}
		}
	}
	return ProtectedSet{ids: m}
}

func (p ProtectedSet) Has(id string) bool {
	_, ok := p.ids[id]
	return ok
}

func (p ProtectedSet) IDs() []string {
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
