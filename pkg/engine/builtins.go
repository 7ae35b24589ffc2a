package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/quadsphere/pkg/sphere"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: quad-sphere -> quad_sphere
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSphere is returned by quad-sphere. It refers to the scene entry by
// index so the printed form stays small.
type sexpSphere struct {
	index int
	cfg   sphere.Config
}

func (s *sexpSphere) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(quad-sphere #%d :size %g :quads-per-row %d)", s.index, s.cfg.Size, s.cfg.QuadsPerRow)
}
func (s *sexpSphere) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknownKeywords returns an error naming the first keyword not in allowed.
func (pa kwArgs) unknownKeywords(fn string, allowed ...string) error {
	for name := range pa.kw {
		known := false
		for _, a := range allowed {
			if name == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp. Floats are accepted when they hold a
// whole number.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && !math.IsInf(v.Val, 0) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected whole number, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp. A bare keyword (nil value) counts as
// true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloatList extracts a list or array of numbers.
func toFloatList(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// sphereKeywords lists the keywords quad-sphere accepts.
var sphereKeywords = []string{
	"size", "quads-per-row", "starting-subdivisions", "subdivision-distances",
	"position", "rotation", "scale", "weld-tolerance", "parallel",
}

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins populate sc during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (observer :at (vec3 0 0 300))
	// -----------------------------------------------------------------------
	env.AddFunction("observer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("observer", "at"); err != nil {
			return zygo.SexpNull, err
		}
		if sc.HasObserver {
			return zygo.SexpNull, fmt.Errorf("observer: already declared at %v", sc.Observer)
		}

		v, ok := pa.kw["at"]
		if !ok {
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("observer requires :at (vec3 x y z)")
			}
			v = pa.positional[0]
		}
		at, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("observer: at: %w", err)
		}

		sc.Observer = at
		sc.HasObserver = true
		return &sexpVec3{vec: at}, nil
	})

	// -----------------------------------------------------------------------
	// (quad-sphere :size 100 :quads-per-row 2 :starting-subdivisions 1
	//              :subdivision-distances [200 120 60]
	//              :position (vec3 0 0 0) :rotation (vec3 0 45 0)
	//              :scale (vec3 1 1 1) :weld-tolerance 0.0001 :parallel false)
	//
	// Registered as "quad_sphere"; the preprocessor converts quad-sphere.
	// The size may also be given as the single positional argument.
	// -----------------------------------------------------------------------
	env.AddFunction("quad_sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("quad-sphere", sphereKeywords...); err != nil {
			return zygo.SexpNull, err
		}

		sizeArg, ok := pa.kw["size"]
		if !ok {
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("quad-sphere requires a size")
			}
			sizeArg = pa.positional[0]
		}
		size, err := toFloat64(sizeArg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("quad-sphere: size: %w", err)
		}
		cfg := sphere.DefaultConfig(size)

		if v, ok := pa.kw["quads-per-row"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad-sphere: quads-per-row: %w", err)
			}
			cfg.QuadsPerRow = n
		}
		if v, ok := pa.kw["starting-subdivisions"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad-sphere: starting-subdivisions: %w", err)
			}
			cfg.StartingSubdivisions = n
		}
		if v, ok := pa.kw["subdivision-distances"]; ok {
			d, err := toFloatList(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad-sphere: subdivision-distances: %w", err)
			}
			cfg.SubdivisionDistances = d
		}
		for _, f := range []struct {
			kw  string
			dst *v3.Vec
		}{
			{"position", &cfg.Position},
			{"rotation", &cfg.Rotation},
			{"scale", &cfg.Scale},
		} {
			v, ok := pa.kw[f.kw]
			if !ok {
				continue
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad-sphere: %s: %w", f.kw, err)
			}
			*f.dst = vec
		}
		if v, ok := pa.kw["weld-tolerance"]; ok {
			tol, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad-sphere: weld-tolerance: %w", err)
			}
			cfg.WeldTolerance = tol
		}
		if v, ok := pa.kw["parallel"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quad-sphere: parallel: %w", err)
			}
			cfg.Parallel = b
		}

		if err := cfg.Err(); err != nil {
			return zygo.SexpNull, fmt.Errorf("quad-sphere: %w", err)
		}

		sc.Spheres = append(sc.Spheres, cfg)
		return &sexpSphere{index: len(sc.Spheres) - 1, cfg: cfg}, nil
	})
}
