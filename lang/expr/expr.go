// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package expr implements the expression graph used to represent lazy and
// stochastic values inside of a template document. Nodes are stored in an
// arena and addressed by handle, so the same node may be shared by several
// parents without any of them owning it.
package expr

import (
	"fmt"
	"reflect"

	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/util"
)

const (
	// ErrInvalidID is returned when a handle does not name a node of the
	// graph it was used with.
	ErrInvalidID = util.Error("invalid node id")

	// ErrIndexOutOfRange is returned when indexing a node whose length is
	// statically known with an index past that length.
	ErrIndexOutOfRange = util.Error("index out of range")

	// ErrInvalidSlot is returned when an argument slot does not exist.
	ErrInvalidSlot = util.Error("invalid argument slot")

	// ErrForeignGraph is returned when an expression from a different graph
	// is used where a node of this graph is expected.
	ErrForeignGraph = util.Error("expression belongs to a different graph")

	// ErrCycle is returned by the traversal when a node is reachable from
	// itself.
	ErrCycle = util.Error("graph contains a cycle")
)

// Names of the structural symbols. These are always present and can't be
// defined by a user.
const (
	NameLiteral = "identity"
	NameList    = "list"
	NameDict    = "dict"
	NameGetItem = "getitem"
	NameAdd     = "add"
	NameDraw    = "draw"
	NameRef     = "ref"
)

// UnknownLen is the Len of a node whose length isn't known statically.
const UnknownLen = -1

// ID is a handle to a node in a graph.
type ID int

// Kind is the closed set of node variants.
type Kind int

const (
	// KindLiteral is a terminal node which wraps a raw value.
	KindLiteral Kind = iota

	// KindList builds a sequence from its positional args.
	KindList

	// KindDict builds a mapping from its named args.
	KindDict

	// KindGetItem indexes its first arg by its second.
	KindGetItem

	// KindAdd adds its two args together.
	KindAdd

	// KindDraw calls a stochastic symbol with an explicit random source. It
	// returns the pair of the drawn value and the next random source.
	KindDraw

	// KindRef is a relative reference into the document being resolved.
	KindRef

	// KindCall applies a named symbol from a library to its args.
	KindCall
)

// String returns the symbol name of a structural kind.
func (obj Kind) String() string {
	switch obj {
	case KindLiteral:
		return NameLiteral
	case KindList:
		return NameList
	case KindDict:
		return NameDict
	case KindGetItem:
		return NameGetItem
	case KindAdd:
		return NameAdd
	case KindDraw:
		return NameDraw
	case KindRef:
		return NameRef
	case KindCall:
		return "call"
	}
	return fmt.Sprintf("kind(%d)", int(obj))
}

// Structural returns true if the name is reserved by a node kind.
func Structural(name string) bool {
	return util.StrInList(name, []string{
		NameLiteral,
		NameList,
		NameDict,
		NameGetItem,
		NameAdd,
		NameDraw,
		NameRef,
	})
}

// NamedArg is a keyword argument of a node.
type NamedArg struct {
	Name string
	ID   ID
}

// Node is a single symbol application. Literals carry their raw value in
// Value and have no inputs, and references carry a *Ref.
type Node struct {
	Kind Kind

	// Name is the symbol being applied.
	Name string

	Args []ID

	// Kwargs are always sorted by name.
	Kwargs []NamedArg

	// Len is the statically known length of the value this node produces,
	// or UnknownLen.
	Len int

	Value interface{}
}

// Inputs returns every input of the node in slot order. Positional args come
// first, followed by the named args in canonical order.
func (obj *Node) Inputs() []ID {
	ids := []ID{}
	ids = append(ids, obj.Args...)
	for _, x := range obj.Kwargs {
		ids = append(ids, x.ID)
	}
	return ids
}

func (obj *Node) copy() *Node {
	n := &Node{
		Kind:  obj.Kind,
		Name:  obj.Name,
		Len:   obj.Len,
		Value: obj.Value,
	}
	if obj.Args != nil {
		n.Args = append([]ID{}, obj.Args...)
	}
	if obj.Kwargs != nil {
		n.Kwargs = append([]NamedArg{}, obj.Kwargs...)
	}
	return n
}

// Graph is an arena of nodes. Handles are only meaningful for the graph that
// produced them. A graph is not safe for concurrent use.
type Graph struct {
	nodes []*Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Size returns the number of nodes in the arena, including any which are no
// longer reachable.
func (obj *Graph) Size() int {
	return len(obj.nodes)
}

// Valid returns true if the handle names a node of this graph.
func (obj *Graph) Valid(id ID) bool {
	return id >= 0 && int(id) < len(obj.nodes)
}

// Node returns the node for a handle, or nil if it is invalid.
func (obj *Graph) Node(id ID) *Node {
	if !obj.Valid(id) {
		return nil
	}
	return obj.nodes[id]
}

func (obj *Graph) add(node *Node) ID {
	obj.nodes = append(obj.nodes, node)
	return ID(len(obj.nodes) - 1)
}

// Literal wraps a raw value. Sequences and mappings keep their length so that
// they can be destructured before evaluation.
func (obj *Graph) Literal(v interface{}) ID {
	length := UnknownLen
	if v != nil {
		switch rv := reflect.ValueOf(v); rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			length = rv.Len()
		}
	}
	return obj.add(&Node{
		Kind:  KindLiteral,
		Name:  NameLiteral,
		Len:   length,
		Value: v,
	})
}

// List builds a sequence from already existing nodes.
func (obj *Graph) List(ids ...ID) (ID, error) {
	for _, id := range ids {
		if !obj.Valid(id) {
			return 0, ErrInvalidID
		}
	}
	return obj.add(&Node{
		Kind: KindList,
		Name: NameList,
		Args: append([]ID{}, ids...),
		Len:  len(ids),
	}), nil
}

// Dict builds a mapping from already existing nodes.
func (obj *Graph) Dict(m map[string]ID) (ID, error) {
	kwargs, err := obj.kwargs(m)
	if err != nil {
		return 0, err
	}
	return obj.add(&Node{
		Kind:   KindDict,
		Name:   NameDict,
		Kwargs: kwargs,
		Len:    len(kwargs),
	}), nil
}

// Ref adds a relative reference.
func (obj *Graph) Ref(ref *Ref) ID {
	return obj.add(&Node{
		Kind:  KindRef,
		Name:  NameRef,
		Len:   UnknownLen,
		Value: ref,
	})
}

// Apply adds a call of a named symbol. Nothing is evaluated.
func (obj *Graph) Apply(name string, args []ID, m map[string]ID) (ID, error) {
	for _, id := range args {
		if !obj.Valid(id) {
			return 0, ErrInvalidID
		}
	}
	kwargs, err := obj.kwargs(m)
	if err != nil {
		return 0, err
	}
	return obj.add(&Node{
		Kind:   KindCall,
		Name:   name,
		Args:   append([]ID{}, args...),
		Kwargs: kwargs,
		Len:    UnknownLen,
	}), nil
}

// kwargs returns the named args in canonical order.
func (obj *Graph) kwargs(m map[string]ID) ([]NamedArg, error) {
	kwargs := []NamedArg{}
	for _, name := range util.StrMapKeys(m) {
		id := m[name]
		if !obj.Valid(id) {
			return nil, ErrInvalidID
		}
		kwargs = append(kwargs, NamedArg{Name: name, ID: id})
	}
	return kwargs, nil
}

// Index returns a node which produces element i of the node id. If the length
// of that node is known, then an index past the end fails immediately. This is
// what makes destructuring of a fixed arity node safe before evaluation.
func (obj *Graph) Index(id ID, i int) (ID, error) {
	node := obj.Node(id)
	if node == nil {
		return 0, ErrInvalidID
	}
	if node.Len != UnknownLen && i >= node.Len {
		return 0, ErrIndexOutOfRange
	}
	return obj.GetItem(id, int64(i))
}

// GetItem returns a node which produces the element of the node id at key. The
// key may be a raw value or a handle. No bounds checks are done.
func (obj *Graph) GetItem(id ID, key interface{}) (ID, error) {
	if !obj.Valid(id) {
		return 0, ErrInvalidID
	}
	k, err := obj.Coerce(key)
	if err != nil {
		return 0, err
	}
	return obj.add(&Node{
		Kind: KindGetItem,
		Name: NameGetItem,
		Args: []ID{id, k},
		Len:  UnknownLen,
	}), nil
}

// Unpack destructures a node into n element nodes. It fails if the node has
// a known length which differs from n.
func (obj *Graph) Unpack(id ID, n int) ([]ID, error) {
	node := obj.Node(id)
	if node == nil {
		return nil, ErrInvalidID
	}
	if node.Len != UnknownLen && node.Len != n {
		return nil, fmt.Errorf("can't unpack %d values into %d targets", node.Len, n)
	}
	ids := []ID{}
	for i := 0; i < n; i++ {
		x, err := obj.Index(id, i)
		if err != nil {
			return nil, err
		}
		ids = append(ids, x)
	}
	return ids, nil
}

// Add lowers the `+` operator. Both operands are coerced.
func (obj *Graph) Add(a, b interface{}) (ID, error) {
	x, err := obj.Coerce(a)
	if err != nil {
		return 0, err
	}
	y, err := obj.Coerce(b)
	if err != nil {
		return 0, err
	}
	return obj.add(&Node{
		Kind: KindAdd,
		Name: NameAdd,
		Args: []ID{x, y},
		Len:  UnknownLen,
	}), nil
}

// Draw adds an explicit draw of a stochastic symbol. The result always has a
// known length of two: the drawn value and the next random source.
func (obj *Graph) Draw(rng ID, name string, args []ID, kwargs []NamedArg) (ID, error) {
	if !obj.Valid(rng) {
		return 0, ErrInvalidID
	}
	n := obj.Literal(name)
	inputs := []ID{rng, n}
	inputs = append(inputs, args...)
	return obj.add(&Node{
		Kind:   KindDraw,
		Name:   NameDraw,
		Args:   inputs,
		Kwargs: append([]NamedArg{}, kwargs...),
		Len:    2,
	}), nil
}

// ReplaceInput points argument slot of the parent at a different node. Slots
// number the positional args first, followed by the named args. The parent is
// mutated in place and the old child is left untouched.
func (obj *Graph) ReplaceInput(parent ID, slot int, id ID) error {
	node := obj.Node(parent)
	if node == nil || !obj.Valid(id) {
		return ErrInvalidID
	}
	if slot < 0 || slot >= len(node.Args)+len(node.Kwargs) {
		return ErrInvalidSlot
	}
	if slot < len(node.Args) {
		node.Args[slot] = id
		return nil
	}
	node.Kwargs[slot-len(node.Args)].ID = id
	return nil
}

// Clone returns a copy of the graph. Handles keep their meaning in the copy,
// and rewriting the copy leaves the original untouched.
func (obj *Graph) Clone() *Graph {
	g := &Graph{
		nodes: make([]*Node, len(obj.nodes)),
	}
	for i, node := range obj.nodes {
		g.nodes[i] = node.copy()
	}
	return g
}

// Merge copies every node of other onto the end of this graph and returns a
// function which translates handles of other into handles of this graph.
func (obj *Graph) Merge(other *Graph) func(ID) ID {
	base := ID(len(obj.nodes))
	for _, node := range other.nodes {
		n := node.copy()
		for i := range n.Args {
			n.Args[i] += base
		}
		for i := range n.Kwargs {
			n.Kwargs[i].ID += base
		}
		obj.nodes = append(obj.nodes, n)
	}
	return func(id ID) ID { return id + base }
}

// Expr is an expression stored in a template document: a root node and the
// graph it lives in. Expressions parsed from the same text share one graph.
type Expr struct {
	Graph *Graph
	Root  ID
}

// String returns the tree form of the expression.
func (obj *Expr) String() string {
	return obj.Graph.Format(obj.Root)
}

// Ref is a relative reference into the document being resolved. With Root set
// it starts from the top of the document, otherwise it starts Up mappings
// above the enclosing one. Path holds string keys and int indexes.
type Ref struct {
	Root bool
	Up   int
	Path []interface{}
}

// NewRef builds a reference from its dotted parts. The first part must be one
// of this, parent or root. Any parents which directly follow a leading parent
// climb one more mapping.
func NewRef(parts []interface{}) (*Ref, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty reference")
	}
	ref := &Ref{}
	switch parts[0] {
	case interfaces.RefThis:
	case interfaces.RefRoot:
		ref.Root = true
	case interfaces.RefParent:
		ref.Up = 1
		for len(parts) > 1 && parts[1] == interfaces.RefParent {
			ref.Up++
			parts = parts[1:]
		}
	default:
		return nil, fmt.Errorf("reference must start with %s, %s or %s", interfaces.RefThis, interfaces.RefParent, interfaces.RefRoot)
	}
	ref.Path = append([]interface{}{}, parts[1:]...)
	return ref, nil
}

// String returns the dotted form of the reference.
func (obj *Ref) String() string {
	s := interfaces.RefThis
	if obj.Root {
		s = interfaces.RefRoot
	} else if obj.Up > 0 {
		s = interfaces.RefParent
		for i := 1; i < obj.Up; i++ {
			s += "." + interfaces.RefParent
		}
	}
	for _, x := range obj.Path {
		switch p := x.(type) {
		case string:
			s += "." + p
		default:
			s += fmt.Sprintf("[%v]", p)
		}
	}
	return s
}
