package asset

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/waks-viewer/internal/engine/scene"
)

// ModelNodeName is the name of the group node every decoded model hangs under.
const ModelNodeName = "model"

// ErrNoGeometry is returned when a document contains no drawable triangles.
var ErrNoGeometry = errors.New("model has no triangle geometry")

// Decode parses GLB (or glTF JSON) bytes into a scene graph whose root has a
// single "model" child holding the default scene.
func Decode(data []byte) (*scene.Graph, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glTF: %w", err)
	}
	return Build(doc)
}

// Build converts a decoded glTF document into a scene graph.
func Build(doc *gltf.Document) (*scene.Graph, error) {
	b := &builder{
		doc:       doc,
		g:         scene.New(),
		materials: make(map[int]*scene.Material),
		visiting:  make(map[int]bool),
	}
	model := b.g.Add(b.g.Root(), scene.NewNode(ModelNodeName))

	for _, idx := range rootNodes(doc) {
		if err := b.addNode(model, idx); err != nil {
			return nil, err
		}
	}
	if b.triangles == 0 {
		return nil, ErrNoGeometry
	}
	return b.g, nil
}

// rootNodes returns the default scene's nodes, falling back to the first
// scene, then to every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	var out []int
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			s = int(*doc.Scene)
		}
		for _, n := range doc.Scenes[s].Nodes {
			out = append(out, int(n))
		}
		return out
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[int(c)] = true
		}
	}
	for i := range doc.Nodes {
		if !child[i] {
			out = append(out, i)
		}
	}
	return out
}

type builder struct {
	doc       *gltf.Document
	g         *scene.Graph
	materials map[int]*scene.Material
	fallback  *scene.Material
	visiting  map[int]bool
	triangles int
}

func (b *builder) addNode(parent scene.NodeID, idx int) error {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if b.visiting[idx] {
		return fmt.Errorf("node %d is its own ancestor", idx)
	}
	b.visiting[idx] = true
	defer delete(b.visiting, idx)

	gn := b.doc.Nodes[idx]
	n := scene.NewNode(gn.Name)
	setTransform(&n, gn)
	id := b.g.Add(parent, n)

	if gn.Mesh != nil {
		if err := b.addMesh(id, int(*gn.Mesh)); err != nil {
			return fmt.Errorf("node %q: %w", gn.Name, err)
		}
	}
	for _, c := range gn.Children {
		if err := b.addNode(id, int(c)); err != nil {
			return err
		}
	}
	return nil
}

func setTransform(n *scene.Node, gn *gltf.Node) {
	var m mgl32.Mat4
	for i, v := range gn.MatrixOrDefault() {
		m[i] = float32(v)
	}
	if m != mgl32.Ident4() && m != (mgl32.Mat4{}) {
		// glTF matrices are column-major like mgl32.
		n.Base = m
		return
	}

	for i, v := range gn.TranslationOrDefault() {
		n.Position[i] = float32(v)
	}
	for i, v := range gn.ScaleOrDefault() {
		n.Scale[i] = float32(v)
	}
	var r [4]float32
	for i, v := range gn.RotationOrDefault() {
		r[i] = float32(v)
	}
	// glTF stores quaternions as (x, y, z, w).
	n.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
}

func (b *builder) addMesh(node scene.NodeID, meshIdx int) error {
	if meshIdx < 0 || meshIdx >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	mesh := b.doc.Meshes[meshIdx]

	var parts []scene.Node
	for i, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		geom, err := b.geometry(prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		part := scene.NewNode(fmt.Sprintf("%s#%d", mesh.Name, i))
		part.Geometry = geom
		part.Material = b.material(prim.Material)
		parts = append(parts, part)
		b.triangles += geom.TriangleCount()
	}

	if len(parts) == 1 {
		n := b.g.Node(node)
		n.Geometry, n.Material = parts[0].Geometry, parts[0].Material
		return nil
	}
	for _, p := range parts {
		b.g.Add(node, p)
	}
	return nil
}

func (b *builder) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("missing POSITION attribute")
	}
	acr, err := b.accessor(int(posIdx))
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	positions := make([]mgl32.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = p
	}

	var normals []mgl32.Vec3
	if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := b.accessor(int(nIdx))
		if err != nil {
			return nil, err
		}
		rawN, err := modeler.ReadNormal(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		if len(rawN) == len(positions) {
			normals = make([]mgl32.Vec3, len(rawN))
			for i, v := range rawN {
				normals[i] = v
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := b.accessor(int(*prim.Indices))
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
			}
		}
	}

	return scene.NewGeometry(positions, normals, indices), nil
}

func (b *builder) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return b.doc.Accessors[idx], nil
}

func (b *builder) material(ref *uint32) *scene.Material {
	if ref == nil || int(*ref) >= len(b.doc.Materials) {
		if b.fallback == nil {
			b.fallback = &scene.Material{Name: "default", Color: mgl32.Vec4{1, 1, 1, 1}}
		}
		return b.fallback
	}
	idx := int(*ref)
	if m, ok := b.materials[idx]; ok {
		return m
	}

	src := b.doc.Materials[idx]
	m := &scene.Material{Name: src.Name, Color: mgl32.Vec4{1, 1, 1, 1}}
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		for i, v := range pbr.BaseColorFactor {
			m.Color[i] = float32(v)
		}
	}
	m.Unlit = src.Extensions != nil && src.Extensions["KHR_materials_unlit"] != nil
	b.materials[idx] = m
	return m
}
