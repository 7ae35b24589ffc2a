package engine

import (
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(observer :at p)`,
			expect: `(observer "__kw_at" p)`,
		},
		{
			name:   "multiple keywords",
			input:  `(quad_sphere :size 100 :parallel true)`,
			expect: `(quad_sphere "__kw_size" 100 "__kw_parallel" true)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(quad-sphere :quads-per-row 2)`,
			expect: `(quad_sphere "__kw_quads-per-row" 2)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 0 -45 0)`,
			expect: `(vec3 0 -45 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalScene evaluates source and fails the test on any error.
func evalScene(t *testing.T, source string) *Scene {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if sc == nil {
		t.Fatal("expected non-nil scene")
	}
	return sc
}

// evalFails evaluates source and returns the joined eval error messages,
// failing the test if evaluation succeeded.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if sc != nil {
		t.Fatal("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	var msgs []string
	for _, e := range evalErrs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ---------------------------------------------------------------------------
// quad-sphere tests
// ---------------------------------------------------------------------------

func TestQuadSphereDefaults(t *testing.T) {
	sc := evalScene(t, `(quad-sphere :size 100)`)
	if len(sc.Spheres) != 1 {
		t.Fatalf("expected 1 sphere, got %d", len(sc.Spheres))
	}
	cfg := sc.Spheres[0]
	if cfg.Size != 100 {
		t.Errorf("expected size=100, got %f", cfg.Size)
	}
	if cfg.QuadsPerRow != 1 {
		t.Errorf("expected quads-per-row=1, got %d", cfg.QuadsPerRow)
	}
	if cfg.Scale != (v3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected unit scale, got %v", cfg.Scale)
	}
	if cfg.Parallel {
		t.Error("expected sequential build by default")
	}
	if sc.HasObserver {
		t.Error("expected no observer")
	}
}

func TestQuadSphereAllKeywords(t *testing.T) {
	source := `
(observer :at (vec3 0 0 300))
(quad-sphere :size 100 :quads-per-row 2 :starting-subdivisions 1
             :subdivision-distances [200 120 60]
             :position (vec3 1 2 3) :rotation (vec3 0 45 0)
             :scale (vec3 2 2 2) :weld-tolerance 0.0001 :parallel true)
`
	sc := evalScene(t, source)
	if !sc.HasObserver || sc.Observer != (v3.Vec{Z: 300}) {
		t.Errorf("observer = %v (declared %v), want (0,0,300)", sc.Observer, sc.HasObserver)
	}
	cfg := sc.Spheres[0]
	if cfg.QuadsPerRow != 2 {
		t.Errorf("expected quads-per-row=2, got %d", cfg.QuadsPerRow)
	}
	if cfg.StartingSubdivisions != 1 {
		t.Errorf("expected starting-subdivisions=1, got %d", cfg.StartingSubdivisions)
	}
	want := []float64{200, 120, 60}
	if len(cfg.SubdivisionDistances) != len(want) {
		t.Fatalf("expected distances %v, got %v", want, cfg.SubdivisionDistances)
	}
	for i := range want {
		if cfg.SubdivisionDistances[i] != want[i] {
			t.Errorf("distance %d = %f, want %f", i, cfg.SubdivisionDistances[i], want[i])
		}
	}
	if cfg.Position != (v3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("position = %v", cfg.Position)
	}
	if cfg.Rotation != (v3.Vec{Y: 45}) {
		t.Errorf("rotation = %v", cfg.Rotation)
	}
	if cfg.Scale != (v3.Vec{X: 2, Y: 2, Z: 2}) {
		t.Errorf("scale = %v", cfg.Scale)
	}
	if cfg.WeldTolerance != 0.0001 {
		t.Errorf("weld-tolerance = %g", cfg.WeldTolerance)
	}
	if !cfg.Parallel {
		t.Error("expected parallel=true")
	}
}

func TestQuadSpherePositionalSize(t *testing.T) {
	sc := evalScene(t, `(quad-sphere 42 :quads-per-row 3)`)
	if sc.Spheres[0].Size != 42 || sc.Spheres[0].QuadsPerRow != 3 {
		t.Errorf("got size=%f quads-per-row=%d", sc.Spheres[0].Size, sc.Spheres[0].QuadsPerRow)
	}
}

func TestVariableReference(t *testing.T) {
	source := `
(def r 250)
(def d (list (* r 2) r))
(quad-sphere :size r :subdivision-distances d)
`
	cfg := evalScene(t, source).Spheres[0]
	if cfg.Size != 250 {
		t.Errorf("expected size=250 (from variable), got %f", cfg.Size)
	}
	if len(cfg.SubdivisionDistances) != 2 || cfg.SubdivisionDistances[0] != 500 {
		t.Errorf("expected distances [500 250], got %v", cfg.SubdivisionDistances)
	}
}

func TestMultipleSpheres(t *testing.T) {
	source := `
(quad-sphere :size 100)
(quad-sphere :size 27 :position (vec3 200 0 0))
`
	sc := evalScene(t, source)
	if len(sc.Spheres) != 2 {
		t.Fatalf("expected 2 spheres, got %d", len(sc.Spheres))
	}
	if sc.Spheres[1].Size != 27 || sc.Spheres[1].Position.X != 200 {
		t.Errorf("second sphere = %+v", sc.Spheres[1])
	}
}

func TestQuadSphereErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"missing size", `(quad-sphere :quads-per-row 2)`, "requires a size"},
		{"non-numeric size", `(quad-sphere :size "big")`, "size"},
		{"zero quads per row", `(quad-sphere :size 10 :quads-per-row 0)`, "quads_per_row"},
		{"fractional quads per row", `(quad-sphere :size 10 :quads-per-row 1.5)`, "whole number"},
		{"negative size", `(quad-sphere :size -5)`, "size"},
		{"bad distances", `(quad-sphere :size 10 :subdivision-distances [1 "x"])`, "entry 1"},
		{"bad position", `(quad-sphere :size 10 :position 5)`, "position"},
		{"zero scale", `(quad-sphere :size 10 :scale (vec3 1 0 1))`, "scale"},
		{"bad parallel", `(quad-sphere :size 10 :parallel 3)`, "parallel"},
		{"unknown keyword", `(quad-sphere :size 10 :radius 5)`, ":radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, tt.source)
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error %q does not mention %q", msg, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// observer tests
// ---------------------------------------------------------------------------

func TestObserverPositional(t *testing.T) {
	sc := evalScene(t, `(observer (vec3 -10 5 0))`)
	if sc.Observer != (v3.Vec{X: -10, Y: 5}) {
		t.Errorf("observer = %v", sc.Observer)
	}
}

func TestObserverErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"missing position", `(observer)`, "requires :at"},
		{"not a vector", `(observer :at 5)`, "expected vec3"},
		{"declared twice", "(observer :at (vec3 0 0 1))\n(observer :at (vec3 0 0 2))", "already declared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, tt.source)
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error %q does not mention %q", msg, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// vec3 tests
// ---------------------------------------------------------------------------

func TestVec3(t *testing.T) {
	sc := evalScene(t, `(observer :at (vec3 10.5 20.3 30.7))`)
	if sc.Observer.X != 10.5 {
		t.Errorf("expected X=10.5, got %f", sc.Observer.X)
	}
	if sc.Observer.Y != 20.3 {
		t.Errorf("expected Y=20.3, got %f", sc.Observer.Y)
	}
	if sc.Observer.Z != 30.7 {
		t.Errorf("expected Z=30.7, got %f", sc.Observer.Z)
	}
}

func TestVec3ArgumentErrors(t *testing.T) {
	for _, source := range []string{`(vec3 1 2)`, `(vec3 1 2 "z")`} {
		msg := evalFails(t, source)
		if !strings.Contains(msg, "vec3") {
			t.Errorf("%s: error %q does not mention vec3", source, msg)
		}
	}
}

// ---------------------------------------------------------------------------
// Plain arithmetic still works (regression)
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	sc := evalScene(t, "(def s (* 2 50))\n(quad-sphere :size s)")
	if sc.Spheres[0].Size != 100 {
		t.Errorf("expected size=100, got %f", sc.Spheres[0].Size)
	}
}
