package committer

import "errors"

// ErrConflict is returned by adapters when an insert hits an existing primary key.
var ErrConflict = errors.New("committer: row already exists")

// Mutation is a single buffered insert. Every table this service writes is
// append-only, so inserts are the only write kind.
type Mutation struct {
	Table  string
	Values map[string]interface{}
}

// Insert builds an insert mutation for table.
func Insert(table string, values map[string]interface{}) *Mutation {
	return &Mutation{Table: table, Values: values}
}

type Plan struct {
	mutations []*Mutation
}

func NewPlan() *Plan {
	return &Plan{
		mutations: make([]*Mutation, 0),
	}
}

func (p *Plan) Add(m *Mutation) {
	if m == nil {
		return
	}
	p.mutations = append(p.mutations, m)
}

func (p *Plan) IsEmpty() bool {
	return len(p.mutations) == 0
}

func (p *Plan) Mutations() []*Mutation {
	return p.mutations
}
