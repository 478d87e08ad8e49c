package intern

// Symbol is a stage-local interned name used for labels and functions
// (spec section 3, "Symbol"). It wraps a Handle into a distinct type so
// that a stage-local Symbol can never be confused with a pipeline-wide
// GlobalSymbol at compile time.
type Symbol Handle

// GlobalSymbol is a pipeline-wide interned name for cross-stage
// references (spec section 3, "GlobalSymbol").
type GlobalSymbol Handle

// Symbols interns stage-local Symbol names.
type Symbols struct {
	table *Table[string, struct{}]
}

// NewSymbols creates an empty stage-local symbol table.
func NewSymbols() *Symbols {
	return &Symbols{table: New[string, struct{}]()}
}

// Intern returns the Symbol for name, minting one if this is the first
// occurrence.
func (s *Symbols) Intern(name string) Symbol {
	return Symbol(s.table.Intern(Normalize(name), struct{}{}))
}

// Resolve returns the Symbol for name without minting one.
func (s *Symbols) Resolve(name string) (Symbol, bool) {
	h, ok := s.table.Resolve(Normalize(name))
	return Symbol(h), ok
}

// Name returns the spelling a Symbol was interned under.
func (s *Symbols) Name(sym Symbol) (string, bool) {
	return s.table.Key(Handle(sym))
}

// GlobalSymbols interns pipeline-wide GlobalSymbol names.
type GlobalSymbols struct {
	table *Table[string, struct{}]
}

// NewGlobalSymbols creates an empty pipeline-wide symbol table.
func NewGlobalSymbols() *GlobalSymbols {
	return &GlobalSymbols{table: New[string, struct{}]()}
}

// Intern returns the GlobalSymbol for name, minting one if necessary.
func (g *GlobalSymbols) Intern(name string) GlobalSymbol {
	return GlobalSymbol(g.table.Intern(Normalize(name), struct{}{}))
}

// Resolve returns the GlobalSymbol for name without minting one.
func (g *GlobalSymbols) Resolve(name string) (GlobalSymbol, bool) {
	h, ok := g.table.Resolve(Normalize(name))
	return GlobalSymbol(h), ok
}

// Name returns the spelling a GlobalSymbol was interned under.
func (g *GlobalSymbols) Name(sym GlobalSymbol) (string, bool) {
	return g.table.Key(Handle(sym))
}
