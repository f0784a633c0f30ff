// Package scene provides the scene graph used by the product viewer.
//
// Nodes live in a flat arena and refer to each other by NodeID. A node's
// parent link is an index, so there are no pointer cycles between a model and
// the markers attached to it; tearing a scene down is an explicit Release.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
)

// NodeID indexes a node in a Graph.
type NodeID int

// None is the NodeID of "no node".
const None NodeID = -1

// Node is one entry of the arena.
type Node struct {
	Name     string
	Parent   NodeID
	Children []NodeID

	// Local transform: Translate(Position) * Rotation * Scale(Scale) * Base.
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Base     mgl32.Mat4

	Geometry *Geometry
	Material *Material

	// Label is opaque metadata carried for the node's owner.
	Label string
}

// NewNode returns a node with an identity transform.
func NewNode(name string) Node {
	return Node{
		Name:     name,
		Parent:   None,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Base:     mgl32.Ident4(),
	}
}

// Releaser frees resources backing geometries and materials, e.g. GPU buffers.
type Releaser interface {
	ReleaseGeometry(*Geometry) error
	ReleaseMaterial(*Material) error
}

// Graph is an arena of nodes with a single root.
type Graph struct {
	nodes []Node
}

// New creates a graph holding only a root node.
func New() *Graph {
	g := &Graph{}
	g.Clear()
	return g
}

// Root returns the root node id.
func (g *Graph) Root() NodeID { return 0 }

// Len returns the number of nodes, root included.
func (g *Graph) Len() int { return len(g.nodes) }

// Valid reports whether id refers to a node of this graph.
func (g *Graph) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns a pointer to the node. The pointer is invalidated by Add, Graft and Clear.
func (g *Graph) Node(id NodeID) *Node {
	if !g.Valid(id) {
		panic(fmt.Sprintf("scene: invalid node id %d", id))
	}
	return &g.nodes[id]
}

// Add inserts n as the last child of parent and returns its id.
func (g *Graph) Add(parent NodeID, n Node) NodeID {
	if !g.Valid(parent) {
		panic(fmt.Sprintf("scene: invalid parent id %d", parent))
	}
	id := NodeID(len(g.nodes))
	n.Parent = parent
	n.Children = nil
	g.nodes = append(g.nodes, n)
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	return id
}

// Graft copies the whole of sub into g. Sub's root becomes a child of parent;
// the returned id is that copy. Geometries and materials are shared, not cloned.
func (g *Graph) Graft(parent NodeID, sub *Graph) NodeID {
	if sub == nil || sub.Len() == 0 {
		return None
	}
	return g.graft(parent, sub, sub.Root())
}

func (g *Graph) graft(parent NodeID, sub *Graph, src NodeID) NodeID {
	n := sub.nodes[src]
	id := g.Add(parent, n)
	for _, child := range sub.nodes[src].Children {
		g.graft(id, sub, child)
	}
	return id
}

// Local returns the node's local transform matrix.
func (g *Graph) Local(id NodeID) mgl32.Mat4 {
	n := g.Node(id)
	return mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2]).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])).
		Mul4(n.Base)
}

// World returns the node's transform relative to the root.
func (g *Graph) World(id NodeID) mgl32.Mat4 {
	m := g.Local(id)
	for p := g.Node(id).Parent; p != None; p = g.nodes[p].Parent {
		m = g.Local(p).Mul4(m)
	}
	return m
}

// WorldPosition returns the node's origin in world space.
func (g *Graph) WorldPosition(id NodeID) mgl32.Vec3 {
	return g.World(id).Col(3).Vec3()
}

// Traverse visits id and its descendants depth-first, parents first, with
// their world matrices. Returning false from fn skips that node's children.
func (g *Graph) Traverse(id NodeID, fn func(id NodeID, n *Node, world mgl32.Mat4) bool) {
	if !g.Valid(id) {
		return
	}
	var parentWorld mgl32.Mat4
	if p := g.nodes[id].Parent; p != None {
		parentWorld = g.World(p)
	} else {
		parentWorld = mgl32.Ident4()
	}
	g.traverse(id, parentWorld, fn)
}

func (g *Graph) traverse(id NodeID, parentWorld mgl32.Mat4, fn func(NodeID, *Node, mgl32.Mat4) bool) {
	world := parentWorld.Mul4(g.Local(id))
	if !fn(id, &g.nodes[id], world) {
		return
	}
	for _, child := range g.nodes[id].Children {
		g.traverse(child, world, fn)
	}
}

// Bounds returns the world-space box around every vertex under id.
func (g *Graph) Bounds(id NodeID) Box {
	box := EmptyBox()
	g.Traverse(id, func(_ NodeID, n *Node, world mgl32.Mat4) bool {
		if n.Geometry == nil {
			return true
		}
		for _, p := range n.Geometry.Positions {
			box = box.ExpandByPoint(mgl32.TransformCoordinate(p, world))
		}
		return true
	})
	return box
}

// RotateY turns the node about its local vertical axis by angle radians.
func (g *Graph) RotateY(id NodeID, angle float32) {
	n := g.Node(id)
	n.Rotation = n.Rotation.Mul(mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})).Normalize()
}

// Release hands every distinct geometry and material to r, then clears the
// graph. All release errors are returned together; the graph is cleared anyway.
func (g *Graph) Release(r Releaser) error {
	var err error
	if r != nil {
		geometries := make(map[*Geometry]struct{})
		materials := make(map[*Material]struct{})
		for i := range g.nodes {
			n := &g.nodes[i]
			if n.Geometry != nil {
				if _, seen := geometries[n.Geometry]; !seen {
					geometries[n.Geometry] = struct{}{}
					err = multierr.Append(err, r.ReleaseGeometry(n.Geometry))
				}
			}
			if n.Material != nil {
				if _, seen := materials[n.Material]; !seen {
					materials[n.Material] = struct{}{}
					err = multierr.Append(err, r.ReleaseMaterial(n.Material))
				}
			}
		}
	}
	g.Clear()
	return err
}

// Clear drops every node except a fresh root.
func (g *Graph) Clear() {
	g.nodes = []Node{NewNode("scene")}
}
