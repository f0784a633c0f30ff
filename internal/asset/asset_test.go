package asset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// writeBox saves a GLB holding one box mesh of the given extents, offset by
// translate, and returns its path.
func writeBox(t *testing.T, dir string, size, translate [3]float32) string {
	t.Helper()

	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2
	positions := [][3]float32{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		3, 7, 6, 3, 6, 2, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, positions)
	idx := modeler.WriteIndices(doc, indices)

	doc.Materials = []*gltf.Material{{
		Name:                 "shell",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{0.2, 0.4, 0.6, 1}},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "Kiosk",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: uint32(pos)},
			Indices:    gltf.Index(uint32(idx)),
			Material:   gltf.Index(0),
		}},
	}}
	node := &gltf.Node{Name: "Body", Mesh: gltf.Index(0)}
	for i := range translate {
		node.Translation[i] = translate[i]
	}
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	path := filepath.Join(dir, "3dmodel.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestDecodeBoxModel(t *testing.T) {
	path := writeBox(t, t.TempDir(), [3]float32{2, 1, 1}, [3]float32{3, 0, 0})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	g, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	root := g.Node(g.Root())
	if len(root.Children) != 1 || g.Node(root.Children[0]).Name != ModelNodeName {
		t.Fatalf("expected a single %q child under the root", ModelNodeName)
	}

	box := g.Bounds(g.Root())
	if !box.Size().ApproxEqualThreshold(mgl32.Vec3{2, 1, 1}, 1e-5) {
		t.Errorf("size = %v, want (2, 1, 1)", box.Size())
	}
	if !box.Center().ApproxEqualThreshold(mgl32.Vec3{3, 0, 0}, 1e-5) {
		t.Errorf("center = %v, want (3, 0, 0)", box.Center())
	}

	body := g.Node(root.Children[0]).Children[0]
	n := g.Node(body)
	if n.Geometry == nil || n.Geometry.TriangleCount() != 12 {
		t.Fatalf("expected 12 triangles on the body node")
	}
	if n.Material == nil || !n.Material.Color.ApproxEqualThreshold(mgl32.Vec4{0.2, 0.4, 0.6, 1}, 1e-6) {
		t.Errorf("material = %+v", n.Material)
	}
	if len(n.Geometry.Normals) != len(n.Geometry.Positions) {
		t.Error("normals should be generated when the file has none")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not a glb")); err == nil {
		t.Error("expected decode error")
	}
}

func TestBuildRejectsEmptyDocument(t *testing.T) {
	if _, err := Build(gltf.NewDocument()); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
}

func TestFetcherResolve(t *testing.T) {
	tests := []struct {
		base, name, want string
	}{
		{"public", "3dmodel.glb", filepath.Join("public", "3dmodel.glb")},
		{"", "3dmodel.glb", "3dmodel.glb"},
		{"https://cdn.example.com/waks/", "3dmodel.glb", "https://cdn.example.com/waks/3dmodel.glb"},
		{"https://cdn.example.com/waks", "models/3dmodel.glb", "https://cdn.example.com/waks/models/3dmodel.glb"},
		{"public", "http://other.example.com/a.glb", "http://other.example.com/a.glb"},
		{"public", "/3dmodel.glb", filepath.Join("public", "3dmodel.glb")},
		{"https://kiosk.example/app", "/3dmodel.glb", "https://kiosk.example/app/3dmodel.glb"},
		{"", "/srv/models/3dmodel.glb", "/srv/models/3dmodel.glb"},
	}
	for _, tt := range tests {
		if got := NewFetcher(tt.base).Resolve(tt.name); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
		}
	}
}

func TestFetcherCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(dir)
	ctx := context.Background()

	if data, err := f.Fetch(ctx, "a.bin"); err != nil || string(data) != "v1" {
		t.Fatalf("first fetch = %q, %v", data, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	if data, _ := f.Fetch(ctx, "a.bin"); string(data) != "v1" {
		t.Errorf("expected cached v1, got %q", data)
	}

	f.Invalidate("a.bin")
	if data, _ := f.Fetch(ctx, "a.bin"); string(data) != "v2" {
		t.Errorf("expected v2 after invalidation, got %q", data)
	}

	hits, misses := f.Cache().Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("stats = %d hits, %d misses; want 1, 2", hits, misses)
	}
}

func TestFetcherMissingFile(t *testing.T) {
	_, err := NewFetcher(t.TempDir()).Fetch(context.Background(), "missing.glb")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadError should wrap the cause, got %v", err)
	}
}

func TestFetcherHTTP(t *testing.T) {
	path := writeBox(t, t.TempDir(), [3]float32{1, 1, 1}, [3]float32{})
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/waks/3dmodel.glb" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(srv.URL+"/waks"), "3dmodel.glb")
	r, err := l.LoadSync(context.Background())
	if err != nil {
		t.Fatalf("LoadSync: %v", err)
	}
	if r.Model == nil {
		t.Fatal("expected a model")
	}
	if _, err := l.LoadSync(context.Background()); err != nil {
		t.Fatalf("second LoadSync: %v", err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("expected one request thanks to caching, got %d", n)
	}

	missing := NewLoader(NewFetcher(srv.URL), "nope.glb")
	if _, err := missing.LoadSync(context.Background()); !IsLoadError(err) {
		t.Errorf("err = %v, want LoadError", err)
	}
}

func waitResolved(t *testing.T, f *Future) Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if r, ok := f.Poll(); ok {
			return r
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("future did not resolve")
	return Result{}
}

func TestLoaderFutureResolves(t *testing.T) {
	dir := t.TempDir()
	writeBox(t, dir, [3]float32{2, 1, 1}, [3]float32{})

	f := NewLoader(NewFetcher(dir), "3dmodel.glb").Load(context.Background())
	r := waitResolved(t, f)
	if r.Err != nil || r.Model == nil {
		t.Fatalf("result = %+v", r)
	}

	// Stays resolved with the same value.
	again, ok := f.Poll()
	if !ok || again.Model != r.Model {
		t.Error("future should keep its result")
	}
}

func TestLoaderFutureFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "3dmodel.glb"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	fetcher := NewFetcher(dir)
	r := waitResolved(t, NewLoader(fetcher, "3dmodel.glb").Load(context.Background()))
	if r.Model != nil || !IsLoadError(r.Err) {
		t.Fatalf("result = %+v, want LoadError", r)
	}
	var le *LoadError
	errors.As(r.Err, &le)
	if le.Location != filepath.Join(dir, "3dmodel.glb") {
		t.Errorf("location = %q", le.Location)
	}

	// The corrupt bytes are not kept.
	if _, ok := fetcher.Cache().Get(fetcher.Resolve("3dmodel.glb")); ok {
		t.Error("corrupt asset should be evicted from the cache")
	}
}

func TestLoaderCancelled(t *testing.T) {
	dir := t.TempDir()
	writeBox(t, dir, [3]float32{1, 1, 1}, [3]float32{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := waitResolved(t, NewLoader(NewFetcher(dir), "3dmodel.glb").Load(ctx))
	if !errors.Is(r.Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", r.Err)
	}
}

func TestResolvedFuture(t *testing.T) {
	want := errors.New("boom")
	r, ok := Resolved(Result{Err: want}).Poll()
	if !ok || r.Err != want {
		t.Errorf("Resolved future = %+v, %v", r, ok)
	}
}
