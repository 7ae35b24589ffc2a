package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/quadsphere/pkg/atlas"
	"github.com/chazu/quadsphere/pkg/engine"
	"github.com/chazu/quadsphere/pkg/kernel"
	"github.com/chazu/quadsphere/pkg/kernel/sdfx"
	"github.com/chazu/quadsphere/pkg/sphere"
	"github.com/chazu/quadsphere/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// meshColor returns the colour of the i-th mesh, the same one the atlas
// preview draws it in.
func meshColor(i int) string {
	return atlas.Hex(atlas.Palette[i%len(atlas.Palette)])
}

// farObserver stands in when a script declares no observer, so only the
// starting subdivisions apply.
var farObserver = v3.Vec{Z: math.Inf(1)}

// App runs scene scripts through the engine, builds the spheres they
// declare and turns them into meshes.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	log    *slog.Logger

	// PerFace emits one mesh per cube face instead of one per sphere.
	PerFace bool
	// ReferenceMeshes also meshes each sphere's analytic reference solid
	// with the kernel, for side-by-side comparison.
	ReferenceMeshes bool
}

// MeshData is the JSON-serializable mesh format.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// SphereStats summarises one built sphere.
type SphereStats struct {
	Index     int `json:"index"`
	Leaves    int `json:"leaves"`
	Welded    int `json:"welded"`   // vertices in the weld map, orphans included
	Vertices  int `json:"vertices"` // mesh vertices, seam vertices once per face
	Triangles int `json:"triangles"`

	// Deviation of mesh vertices from the analytic sphere. HasReference is
	// false when the scale is not uniform and no reference exists.
	HasReference  bool    `json:"hasReference"`
	MaxDeviation  float64 `json:"maxDeviation"`
	MeanDeviation float64 `json:"meanDeviation"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Meshes     []MeshData      `json:"meshes"`
	References []MeshData      `json:"references"`
	Errors     []EvalErrorData `json:"errors"`
	Warnings   []EvalErrorData `json:"warnings"`
	Stats      []SphereStats   `json:"stats"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
		log:    slog.Default(),
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:     []MeshData{},
		References: []MeshData{},
		Errors:     []EvalErrorData{},
		Warnings:   []EvalErrorData{},
		Stats:      []SphereStats{},
	}

	// Step 1: Evaluate the Lisp source into a scene.
	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	obs := farObserver
	if sc.HasObserver {
		obs = sc.Observer
	}

	// Step 3: Build and tessellate every declared sphere.
	for i, cfg := range sc.Spheres {
		for _, w := range cfg.Warnings() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("sphere %d: %s: %s", i, w.Field, w.Message),
			})
		}

		meshes, ref, stats, err := a.buildSphere(cfg, obs)
		if err != nil {
			a.log.Error("sphere build failed", "sphere", i, "err", err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("sphere %d: %v", i, err),
			})
			return result
		}
		stats.Index = i
		result.Stats = append(result.Stats, stats)

		// Step 4: Convert kernel meshes to the MeshData format.
		for _, m := range meshes {
			name := m.PartName
			if len(sc.Spheres) > 1 {
				name = sphereName(i, name)
			}
			result.Meshes = append(result.Meshes, MeshData{
				Vertices: m.Vertices,
				Normals:  m.Normals,
				UVs:      m.UVs,
				Indices:  m.Indices,
				PartName: name,
				Color:    meshColor(len(result.Meshes)),
			})
		}
		if ref != nil {
			result.References = append(result.References, MeshData{
				Vertices: ref.Vertices,
				Normals:  ref.Normals,
				UVs:      []float32{},
				Indices:  ref.Indices,
				PartName: sphereName(i, "reference"),
				Color:    meshColor(len(result.References)),
			})
		}
	}

	return result
}

func sphereName(i int, part string) string {
	if part == "" {
		return fmt.Sprintf("sphere-%d", i)
	}
	return fmt.Sprintf("sphere-%d/%s", i, part)
}

// buildSphere builds one sphere, tessellates it and measures it against the
// kernel's reference sphere. The reference is meshed only when
// ReferenceMeshes is set and the sphere has one.
func (a *App) buildSphere(cfg sphere.Config, obs v3.Vec) ([]*kernel.Mesh, *kernel.Mesh, SphereStats, error) {
	var stats SphereStats

	s, err := sphere.New(cfg, sphere.NewPointObserver(obs))
	if err != nil {
		return nil, nil, stats, err
	}
	whole, err := tessellate.Tessellate(s)
	if err != nil {
		return nil, nil, stats, err
	}
	stats.Leaves = s.Leaves()
	stats.Welded = s.WeldMap().Len()
	stats.Vertices = whole.VertexCount()
	stats.Triangles = whole.TriangleCount()

	var refMesh *kernel.Mesh
	ref, err := tessellate.Reference(a.kernel, cfg)
	switch {
	case errors.Is(err, tessellate.ErrNoReference):
		a.log.Debug("no reference sphere", "scale", cfg.Scale)
	case err != nil:
		return nil, nil, stats, err
	default:
		stats.HasReference = true
		stats.MaxDeviation, stats.MeanDeviation = kernel.Deviation(ref, whole)
		if a.ReferenceMeshes {
			if refMesh, err = a.kernel.ToMesh(ref); err != nil {
				return nil, nil, stats, fmt.Errorf("reference mesh: %w", err)
			}
			a.log.Debug("reference meshed", "triangles", refMesh.TriangleCount())
		}
	}

	meshes := []*kernel.Mesh{whole}
	if a.PerFace {
		if meshes, err = tessellate.Faces(s); err != nil {
			return nil, nil, stats, err
		}
	}
	return meshes, refMesh, stats, nil
}

// Export writes every mesh in result to path as a single binary STL file.
func (a *App) Export(result EvalResult, path string) error {
	if len(result.Meshes) == 0 {
		return errors.New("export: no meshes")
	}
	return a.saveSTL("export", result.Meshes, path)
}

// ExportReference writes the reference meshes in result to path as a
// single binary STL file.
func (a *App) ExportReference(result EvalResult, path string) error {
	if len(result.References) == 0 {
		return errors.New("reference: no reference meshes")
	}
	return a.saveSTL("reference", result.References, path)
}

func (a *App) saveSTL(op string, mds []MeshData, path string) error {
	merged := &kernel.Mesh{}
	for _, md := range mds {
		base := uint32(len(merged.Vertices) / 3)
		merged.Vertices = append(merged.Vertices, md.Vertices...)
		for _, idx := range md.Indices {
			merged.Indices = append(merged.Indices, base+idx)
		}
	}
	if err := a.kernel.SaveSTL(path, merged); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info("exported", "op", op, "path", path, "triangles", merged.TriangleCount())
	return nil
}

// Atlas writes a size x size PNG of the UV layout of every mesh in result.
func (a *App) Atlas(result EvalResult, path string, size int) error {
	if len(result.Meshes) == 0 {
		return errors.New("atlas: no meshes")
	}
	meshes := make([]*kernel.Mesh, len(result.Meshes))
	for i, md := range result.Meshes {
		meshes[i] = &kernel.Mesh{
			Vertices: md.Vertices,
			UVs:      md.UVs,
			Indices:  md.Indices,
			PartName: md.PartName,
		}
	}
	if err := atlas.SavePNG(path, meshes, size); err != nil {
		return err
	}
	a.log.Info("atlas written", "path", path, "size", size)
	return nil
}
