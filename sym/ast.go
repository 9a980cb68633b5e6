package sym

// Modifier selects the merge behavior of an object key when local data is
// merged over imported data.
type Modifier uint8

const (
	// ModMerge is the default: objects merge recursively, anything else
	// is replaced by the local value.
	ModMerge Modifier = iota
	// ModReplace (:key!) discards the imported value wholesale.
	ModReplace
	// ModAppend (:key+) concatenates arrays, imported elements first.
	ModAppend
)

// String returns the modifier's source spelling.
func (m Modifier) String() string {
	switch m {
	case ModReplace:
		return "!"
	case ModAppend:
		return "+"
	default:
		return ""
	}
}

// NodeKind discriminates AST value nodes.
type NodeKind uint8

const (
	NodeLit    NodeKind = iota // scalar, string or symbol literal
	NodeVarRef                 // whole-value $name reference
	NodeInterp                 // string with embedded $name references
	NodeArray
	NodeObject
)

// Node is a parse-time value. Nodes become Values during resolution;
// VarRef and Interp nodes only exist before substitution.
type Node struct {
	kind NodeKind
	pos  Position

	lit     *Value    // NodeLit
	varName string    // NodeVarRef
	segs    []Segment // NodeInterp
	items   []*Node   // NodeArray
	fields  []Field   // NodeObject
}

// Segment is one piece of an interpolated string: either literal text or
// a variable reference, never both.
type Segment struct {
	Text string
	Var  string
	Pos  Position
}

// Field is one entry of an object node. VarDef entries come from the
// `$name value` form and double as variable bindings when the enclosing
// block is classified as a defs block.
type Field struct {
	Key      string
	Modifier Modifier
	VarDef   bool
	Override bool
	Value    *Node
	Pos      Position
}

// Import is an @import directive from the document prefix.
type Import struct {
	Path string
	Pos  Position
}

// Binding is a single variable definition inside a defs block.
type Binding struct {
	Name     string
	Override bool
	Value    *Node
	Pos      Position
}

// DefsBlock is a non-final top-level block whose keys are all variable
// definitions.
type DefsBlock struct {
	Bindings []Binding
	Pos      Position
}

// Document is the parser's output: the import list, the defs blocks in
// source order, and the single data block.
type Document struct {
	Origin  string
	Imports []Import
	Defs    []DefsBlock
	Data    *Node
}

// Node constructors, used by the parser and tests.

func litNode(v *Value, pos Position) *Node {
	return &Node{kind: NodeLit, lit: v, pos: pos}
}

func varRefNode(name string, pos Position) *Node {
	return &Node{kind: NodeVarRef, varName: name, pos: pos}
}

func interpNode(segs []Segment, pos Position) *Node {
	return &Node{kind: NodeInterp, segs: segs, pos: pos}
}

func arrayNode(items []*Node, pos Position) *Node {
	return &Node{kind: NodeArray, items: items, pos: pos}
}

func objectNode(fields []Field, pos Position) *Node {
	return &Node{kind: NodeObject, fields: fields, pos: pos}
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Pos returns the node's source position.
func (n *Node) Pos() Position {
	return n.pos
}

// Fields returns the entries of an object node.
func (n *Node) Fields() []Field {
	if n.kind != NodeObject {
		return nil
	}
	return n.fields
}

// Items returns the elements of an array node.
func (n *Node) Items() []*Node {
	if n.kind != NodeArray {
		return nil
	}
	return n.items
}

// Literal returns the literal value of a NodeLit node.
func (n *Node) Literal() *Value {
	if n.kind != NodeLit {
		return nil
	}
	return n.lit
}
