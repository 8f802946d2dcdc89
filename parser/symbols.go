package parser

import "sort"

// SymbolTable maps label names to the program-counter value they were
// defined at during pass 1 (spec.md §4.3).
type SymbolTable struct {
	addrs    map[string]uint64
	definedAt map[string]Position
}

// NewSymbolTable builds an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		addrs:     make(map[string]uint64),
		definedAt: make(map[string]Position),
	}
}

// Define records name at pc. Returns a *DuplicateLabelError if name is
// already defined.
func (t *SymbolTable) Define(name string, pc uint64, pos Position) error {
	if first, ok := t.definedAt[name]; ok {
		return &DuplicateLabelError{Name: name, First: first, Pos: pos}
	}
	t.addrs[name] = pc
	t.definedAt[name] = pos
	return nil
}

// Lookup resolves name to its pc.
func (t *SymbolTable) Lookup(name string) (uint64, bool) {
	pc, ok := t.addrs[name]
	return pc, ok
}

// Symbol is one entry of an enumerated SymbolTable (see All).
type Symbol struct {
	Name    string
	Address uint64
	Pos     Position
}

// All returns every defined symbol, ordered by address then name, for
// tooling that reports on or cross-references a whole symbol table
// (xref, lint, symbol dump).
func (t *SymbolTable) All() []Symbol {
	out := make([]Symbol, 0, len(t.addrs))
	for name, addr := range t.addrs {
		out = append(out, Symbol{Name: name, Address: addr, Pos: t.definedAt[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Name < out[j].Name
	})
	return out
}
