package sym

import (
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ParseDocument runs the full pipeline on a source: lex, parse, resolve
// imports and variables, and merge imported data under the modifier
// rules. origin names the source for diagnostics and relative import
// resolution. A nil loader falls back to a FileLoader without a sandbox.
func ParseDocument(input []byte, origin string, loader Loader) (*Value, error) {
	if loader == nil {
		loader = &FileLoader{}
	}
	r := &resolver{
		loader:     loader,
		inProgress: map[string]bool{origin: true},
		cache:      make(map[string]*resolvedImport),
	}
	doc, perr := parseAST(input, origin)
	if perr != nil {
		return nil, perr
	}
	val, _, rerr := r.resolveDocument(doc)
	if rerr != nil {
		return nil, rerr
	}
	return val, nil
}

// Parse resolves a standalone source with a default loader; imports are
// resolved relative to the working directory.
func Parse(input []byte) (*Value, error) {
	return ParseDocument(input, "<input>", nil)
}

// resolvedImport caches the outcome of resolving one import target.
type resolvedImport struct {
	value    *Value
	bindings []exportedBinding
}

// exportedBinding is a variable a document makes visible to whoever
// imports it, with the override flag of the binding that introduced it.
type exportedBinding struct {
	name     string
	override bool
	value    *Value
}

// environment is the ordered variable scope built up across imports and
// defs blocks.
type environment struct {
	names []string
	vals  map[string]*Value
}

func newEnvironment() *environment {
	return &environment{vals: make(map[string]*Value)}
}

func (e *environment) lookup(name string) (*Value, bool) {
	v, ok := e.vals[name]
	return v, ok
}

func (e *environment) bind(name string, v *Value) {
	if _, ok := e.vals[name]; !ok {
		e.names = append(e.names, name)
	}
	e.vals[name] = v
}

// resolver executes imports and substitution for one ParseDocument call.
// The in-progress set spans the recursion so import cycles surface as
// errors instead of unbounded recursion.
type resolver struct {
	loader     Loader
	inProgress map[string]bool
	cache      map[string]*resolvedImport
}

// resolveDocument produces the document's resolved value and the
// variable bindings it exports.
func (r *resolver) resolveDocument(doc *Document) (*Value, []exportedBinding, *Error) {
	env := newEnvironment()
	var exported []exportedBinding
	var imported *Value

	for _, imp := range doc.Imports {
		ri, err := r.resolveImport(doc.Origin, imp)
		if err != nil {
			return nil, nil, err
		}
		if imported == nil {
			imported = ri.value
		} else {
			imported = mergeValues(imported, ri.value)
		}
		for _, b := range ri.bindings {
			if prev, bound := env.lookup(b.name); bound && !b.override && prev != b.value {
				e := errf(ErrVariable, imp.Pos,
					"duplicate variable $%s without override (use $%s! to override)", b.name, b.name)
				e.Origin = doc.Origin
				return nil, nil, e
			}
			env.bind(b.name, b.value)
			exported = append(exported, b)
		}
	}

	for _, defs := range doc.Defs {
		for _, binding := range defs.Bindings {
			val, err := r.resolveNode(binding.Value, env, doc.Origin)
			if err != nil {
				return nil, nil, err
			}
			if _, bound := env.lookup(binding.Name); bound && !binding.Override {
				e := errf(ErrVariable, binding.Pos,
					"duplicate variable $%s without override (use $%s! to override)", binding.Name, binding.Name)
				e.Origin = doc.Origin
				return nil, nil, e
			}
			env.bind(binding.Name, val)
			exported = append(exported, exportedBinding{
				name:     binding.Name,
				override: binding.Override,
				value:    val,
			})
		}
	}

	var data *Value
	var err *Error
	if imported == nil {
		data, err = r.resolveNode(doc.Data, env, doc.Origin)
	} else {
		data, err = r.mergeNode(imported, doc.Data, env, doc.Origin)
	}
	if err != nil {
		return nil, nil, err
	}
	return data, exported, nil
}

// resolveImport loads and fully resolves one import target, with cycle
// detection and per-parse caching on the canonical origin.
func (r *resolver) resolveImport(origin string, imp Import) (*resolvedImport, *Error) {
	target, data, err := r.loader.Load(origin, imp.Path)
	if err != nil {
		e := errf(ErrImport, imp.Pos, "cannot import %q: %v", imp.Path, err)
		e.Origin = origin
		return nil, e
	}

	if r.inProgress[target] {
		e := errf(ErrImport, imp.Pos, "import cycle detected: %q", target)
		e.Origin = origin
		return nil, e
	}
	if cached, ok := r.cache[target]; ok {
		return cached, nil
	}

	doc, perr := parseAST(data, target)
	if perr != nil {
		return nil, perr
	}

	r.inProgress[target] = true
	val, bindings, rerr := r.resolveDocument(doc)
	delete(r.inProgress, target)
	if rerr != nil {
		return nil, rerr
	}

	ri := &resolvedImport{value: val, bindings: bindings}
	r.cache[target] = ri
	return ri, nil
}

// ----- substitution -----

// resolveNode turns an AST node into a Value, substituting variable
// references against the environment.
func (r *resolver) resolveNode(node *Node, env *environment, origin string) (*Value, *Error) {
	switch node.kind {
	case NodeLit:
		return node.lit, nil

	case NodeVarRef:
		v, ok := env.lookup(node.varName)
		if !ok {
			return nil, r.undefined(node.varName, node.pos, env, origin)
		}
		return v, nil

	case NodeInterp:
		return r.resolveInterp(node, env, origin)

	case NodeArray:
		items := make([]*Value, 0, len(node.items))
		for _, elem := range node.items {
			v, err := r.resolveNode(elem, env, origin)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return Array(items...), nil

	case NodeObject:
		locals, err := localEntries(node, origin)
		if err != nil {
			return nil, err
		}
		entries := make([]ObjectEntry, 0, len(locals))
		for _, le := range locals {
			v, err := r.resolveNode(le.node, env, origin)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectEntry{Key: le.key, Value: v})
		}
		return Object(entries...), nil

	default:
		e := errf(ErrParse, node.pos, "unresolvable node")
		e.Origin = origin
		return nil, e
	}
}

// resolveInterp substitutes variable references inside a segmented
// string. Referenced values must stringify: containers do not.
func (r *resolver) resolveInterp(node *Node, env *environment, origin string) (*Value, *Error) {
	var out []byte
	for _, seg := range node.segs {
		if seg.Var == "" {
			out = append(out, seg.Text...)
			continue
		}
		v, ok := env.lookup(seg.Var)
		if !ok {
			return nil, r.undefined(seg.Var, seg.Pos, env, origin)
		}
		s, err := stringifyForInterp(v, seg, origin)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return Str(string(out)), nil
}

// stringifyForInterp renders a bound value inside a string.
func stringifyForInterp(v *Value, seg Segment, origin string) (string, *Error) {
	switch v.kind {
	case KindNull:
		return "null", nil
	case KindBool:
		return strconv.FormatBool(v.boolVal), nil
	case KindInt:
		return strconv.FormatInt(v.intVal, 10), nil
	case KindFloat:
		return formatFloat(v.floatVal), nil
	case KindStr:
		return v.strVal, nil
	case KindSymbol:
		return v.strVal, nil
	default:
		e := errf(ErrVariable, seg.Pos,
			"cannot interpolate %s value of $%s into a string", v.kind, seg.Var)
		e.Origin = origin
		return "", e
	}
}

// undefined builds the undefined-variable error, suggesting the closest
// bound name when one is plausibly a typo.
func (r *resolver) undefined(name string, pos Position, env *environment, origin string) *Error {
	var e *Error
	ranks := fuzzy.RankFindFold(name, env.names)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		e = errf(ErrVariable, pos, "undefined variable: $%s (did you mean $%s?)", name, ranks[0].Target)
	} else {
		e = errf(ErrVariable, pos, "undefined variable: $%s", name)
	}
	e.Origin = origin
	return e
}

// ----- object entry materialization -----

// localEntry is one object entry before value resolution: variable
// definition fields materialize as "$name" keys, and a repeated
// definition needs the override flag.
type localEntry struct {
	key  string
	mod  Modifier
	node *Node
	pos  Position
}

func localEntries(node *Node, origin string) ([]localEntry, *Error) {
	var entries []localEntry
	index := make(map[string]int)
	for _, f := range node.fields {
		key := f.Key
		if f.VarDef {
			key = "$" + f.Key
			if at, dup := index[key]; dup {
				if !f.Override {
					e := errf(ErrVariable, f.Pos,
						"duplicate variable $%s without override (use $%s! to override)", f.Key, f.Key)
					e.Origin = origin
					return nil, e
				}
				entries[at].node = f.Value
				continue
			}
		}
		index[key] = len(entries)
		entries = append(entries, localEntry{key: key, mod: f.Modifier, node: f.Value, pos: f.Pos})
	}
	return entries, nil
}

// ----- merging -----

// mergeNode merges the folded imported value with the local data block.
// Merge recursion is AST-directed because the modifiers live on the
// local entries; imported values carry none.
func (r *resolver) mergeNode(imported *Value, node *Node, env *environment, origin string) (*Value, *Error) {
	if node.kind != NodeObject || imported == nil || imported.kind != KindObject {
		// No object-to-object merge: the local value wins.
		return r.resolveNode(node, env, origin)
	}

	locals, err := localEntries(node, origin)
	if err != nil {
		return nil, err
	}
	localIdx := make(map[string]localEntry, len(locals))
	for _, le := range locals {
		localIdx[le.key] = le
	}

	var entries []ObjectEntry
	consumed := make(map[string]bool)

	// Imported keys first, in imported order, merged in place. Keys the
	// local side replaces wholesale move to the local section instead.
	for _, ie := range imported.objVal {
		le, present := localIdx[ie.Key]
		if !present {
			entries = append(entries, ie)
			continue
		}
		switch le.mod {
		case ModReplace:
			continue
		case ModAppend:
			v, err := r.appendArrays(ie.Value, le, env, origin)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectEntry{Key: ie.Key, Value: v})
			consumed[ie.Key] = true
		default:
			var v *Value
			var err *Error
			if ie.Value.kind == KindObject && le.node.kind == NodeObject {
				v, err = r.mergeNode(ie.Value, le.node, env, origin)
			} else {
				v, err = r.resolveNode(le.node, env, origin)
			}
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectEntry{Key: ie.Key, Value: v})
			consumed[ie.Key] = true
		}
	}

	// Then local keys: replacements and additions, in local order.
	for _, le := range locals {
		if consumed[le.key] {
			continue
		}
		v, err := r.resolveNode(le.node, env, origin)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ObjectEntry{Key: le.key, Value: v})
	}

	return Object(entries...), nil
}

// appendArrays implements the + modifier: imported elements first, local
// elements after. Both sides must be arrays.
func (r *resolver) appendArrays(importedVal *Value, le localEntry, env *environment, origin string) (*Value, *Error) {
	localVal, err := r.resolveNode(le.node, env, origin)
	if err != nil {
		return nil, err
	}
	if importedVal.kind != KindArray || localVal.kind != KindArray {
		e := errf(ErrMerge, le.pos, "cannot append to non-array :%s", le.key)
		e.Origin = origin
		return nil, e
	}
	items := make([]*Value, 0, len(importedVal.arrVal)+len(localVal.arrVal))
	items = append(items, importedVal.arrVal...)
	items = append(items, localVal.arrVal...)
	return Array(items...), nil
}

// mergeValues deep-merges two resolved values: objects merge key by key,
// anything else resolves in favor of the later value. Used when folding
// multiple imports before the local merge.
func mergeValues(base, overlay *Value) *Value {
	if base == nil {
		return overlay
	}
	if base.kind != KindObject || overlay.kind != KindObject {
		return overlay
	}
	var entries []ObjectEntry
	overlayIdx := make(map[string]*Value, len(overlay.objVal))
	for _, e := range overlay.objVal {
		overlayIdx[e.Key] = e.Value
	}
	taken := make(map[string]bool)
	for _, e := range base.objVal {
		if ov, ok := overlayIdx[e.Key]; ok {
			entries = append(entries, ObjectEntry{Key: e.Key, Value: mergeValues(e.Value, ov)})
			taken[e.Key] = true
		} else {
			entries = append(entries, e)
		}
	}
	for _, e := range overlay.objVal {
		if !taken[e.Key] {
			entries = append(entries, e)
		}
	}
	return Object(entries...)
}
