// Package pipeline implements the Pipeline type from spec section 4.6:
// a graph of compile stages connected by lowering edges, a single
// cross-stage global symbol table, and a per-function-name map of which
// stages host that function.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/QuEraComputing/kirin/internal/intern"
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/stage"
)

// LoweringEdge records that stage From may lower into stage To (spec
// glossary "Compile stage": "one level of the compilation graph").
type LoweringEdge struct {
	From, To stage.ID
}

// Pipeline owns every compile stage, the global symbol table shared
// across them, and the lowering graph connecting them. Every pipeline
// is independent — there is no global/shared registry (spec section 9,
// "no global state").
type Pipeline struct {
	SessionID uuid.UUID

	globals *intern.GlobalSymbols

	stages    map[stage.ID]any // erased stage.Info[L,C]; recovered via WithStage[L,C]
	nextID    stage.ID
	edges     []LoweringEdge
	stageName map[stage.ID]string

	// functionStages records, for each globally-named function, which
	// stages currently host a staged or specialized entry for it — used
	// by the dynamic (stage-tag-at-runtime) call-resolution APIs (spec
	// section 4.10).
	functionStages map[intern.GlobalSymbol][]stage.ID
}

// New creates an empty pipeline with a fresh session id.
func New() *Pipeline {
	return &Pipeline{
		SessionID:      uuid.New(),
		globals:        intern.NewGlobalSymbols(),
		stages:         make(map[stage.ID]any),
		stageName:      make(map[stage.ID]string),
		functionStages: make(map[intern.GlobalSymbol][]stage.ID),
	}
}

// AddStage registers a new compile stage named name, hosting dialect L
// over type-attribute representation C, and returns its id.
func AddStage[L any, C any](p *Pipeline, name string) stage.ID {
	p.nextID++
	id := p.nextID
	p.stages[id] = stage.New[L, C](id)
	p.stageName[id] = name
	return id
}

// WithStage type-safely recovers the Info[L,C] registered at id. On a
// type mismatch (the stage was registered for a different dialect or
// type-attribute representation), ok is false and callers should
// surface StageMismatch (spec section 4.10).
func WithStage[L any, C any](p *Pipeline, id stage.ID) (*stage.Info[L, C], bool) {
	raw, ok := p.stages[id]
	if !ok {
		return nil, false
	}
	info, ok := raw.(*stage.Info[L, C])
	return info, ok
}

// StoreFor returns stage id's structural IR store without requiring the
// caller to know the dialect L or type-attribute representation C that
// stage was registered with — the dynamic call-resolution path (spec
// section 4.10) uses this to support mixed-stage recursion.
func (p *Pipeline) StoreFor(id stage.ID) (*ir.Store, bool) {
	raw, ok := p.stages[id]
	if !ok {
		return nil, false
	}
	holder, ok := raw.(stage.StoreHolder)
	if !ok {
		return nil, false
	}
	return holder.StructuralStore(), true
}

// AddLowering records that From may lower into To.
func (p *Pipeline) AddLowering(from, to stage.ID) {
	p.edges = append(p.edges, LoweringEdge{From: from, To: to})
}

// GlobalSymbol interns name in the pipeline's cross-stage symbol table.
func (p *Pipeline) GlobalSymbol(name string) intern.GlobalSymbol { return p.globals.Intern(name) }

// GlobalSymbolName resolves sym back to its source text.
func (p *Pipeline) GlobalSymbolName(sym intern.GlobalSymbol) (string, bool) {
	return p.globals.Name(sym)
}

// RegisterFunctionStage records that stage id now hosts a staged or
// specialized entry for name, for the dynamic call-resolution APIs.
func (p *Pipeline) RegisterFunctionStage(name intern.GlobalSymbol, id stage.ID) {
	for _, existing := range p.functionStages[name] {
		if existing == id {
			return
		}
	}
	p.functionStages[name] = append(p.functionStages[name], id)
}

// FunctionStages returns every stage id known to host name.
func (p *Pipeline) FunctionStages(name intern.GlobalSymbol) []stage.ID {
	return p.functionStages[name]
}

// StageName returns the human-readable name a stage was registered
// with, for diagnostics and DotGraph.
func (p *Pipeline) StageName(id stage.ID) string { return p.stageName[id] }

// DotGraph renders the lowering graph as Graphviz dot text, consumed by
// `kirinctl pipeline graph`. This is new tooling surface with no
// round-trip requirement, distinct from the out-of-scope textual IR
// format (spec section 6).
func (p *Pipeline) DotGraph() string {
	ids := make([]stage.ID, 0, len(p.stageName))
	for id := range p.stageName {
		ids = append(ids, id)
	}
	col := collate.New(language.Und)
	sort.Slice(ids, func(i, j int) bool {
		if c := col.CompareString(p.stageName[ids[i]], p.stageName[ids[j]]); c != 0 {
			return c < 0
		}
		return ids[i] < ids[j]
	})

	var b strings.Builder
	b.WriteString("digraph pipeline {\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "  stage_%d [label=%q];\n", id, p.stageName[id])
	}
	for _, e := range p.edges {
		fmt.Fprintf(&b, "  stage_%d -> stage_%d;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}
