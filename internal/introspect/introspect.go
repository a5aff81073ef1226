// Package introspect resolves the qualified identity and declared parameter
// names of a Go test function.
package introspect

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Introspector resolves a callable into the identity and parameters used as
// mapping keys.
type Introspector interface {
	Identity(fn any) (string, error)
	Params(fn any) ([]string, error)
}

// Runtime introspects functions compiled into the current binary. Parameter
// names are recovered from the declaring source file, so that file must be
// readable at the path recorded in the binary.
type Runtime struct {
	mu    sync.Mutex
	files map[string]*ast.File
	fset  *token.FileSet
}

// NewRuntime creates a runtime introspector.
func NewRuntime() *Runtime {
	return &Runtime{
		files: make(map[string]*ast.File),
		fset:  token.NewFileSet(),
	}
}

func funcForValue(fn any) (*runtime.Func, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("expected a function, got %T", fn)
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return nil, fmt.Errorf("cannot resolve function %T", fn)
	}
	return f, nil
}

// NormalizeName turns a runtime symbol name into pkgpath.Type.Method form.
// Pointer receivers and method value suffixes are dropped.
func NormalizeName(name string) string {
	name = strings.TrimSuffix(name, "-fm")
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")
	return name
}

// Identity returns the qualified name of fn.
func (r *Runtime) Identity(fn any) (string, error) {
	f, err := funcForValue(fn)
	if err != nil {
		return "", err
	}
	return NormalizeName(f.Name()), nil
}

// Params returns the declared parameter names of fn in order. The receiver
// and parameters named self or _ are left out.
func (r *Runtime) Params(fn any) ([]string, error) {
	f, err := funcForValue(fn)
	if err != nil {
		return nil, err
	}

	identity := NormalizeName(f.Name())
	recv, name := splitName(identity)
	if isClosureName(name) {
		return nil, fmt.Errorf("cannot read parameters of anonymous function %s", identity)
	}

	file, _ := f.FileLine(f.Entry())
	if !strings.HasSuffix(file, ".go") {
		return nil, fmt.Errorf("no source for %s, pass a method expression instead of a method value", identity)
	}
	parsed, err := r.parse(file)
	if err != nil {
		return nil, err
	}

	decl := findFunc(parsed, recv, name)
	if decl == nil {
		return nil, fmt.Errorf("declaration of %s not found in %s", identity, file)
	}
	return paramNames(decl.Type), nil
}

func (r *Runtime) parse(path string) (*ast.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.files[path]; ok {
		return f, nil
	}
	f, err := parser.ParseFile(r.fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	r.files[path] = f
	return f, nil
}

// splitName splits a normalized identity into receiver type and function
// name. The receiver is empty for plain functions.
func splitName(identity string) (recv, name string) {
	base := identity
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	parts := strings.Split(base, ".")
	switch len(parts) {
	case 0, 1:
		return "", base
	case 2:
		return "", parts[1]
	default:
		return parts[len(parts)-2], parts[len(parts)-1]
	}
}

// isClosureName matches the func1, func2, ... names given to function literals.
func isClosureName(name string) bool {
	rest, ok := strings.CutPrefix(name, "func")
	if !ok || rest == "" {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func findFunc(file *ast.File, recv, name string) *ast.FuncDecl {
	for _, d := range file.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Name.Name != name {
			continue
		}
		if recv == "" && fd.Recv == nil {
			return fd
		}
		if recv != "" && fd.Recv != nil && len(fd.Recv.List) == 1 && receiverType(fd.Recv.List[0].Type) == recv {
			return fd
		}
	}
	return nil
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	}
	return ""
}

func paramNames(ft *ast.FuncType) []string {
	names := []string{}
	if ft.Params == nil {
		return names
	}
	for _, field := range ft.Params.List {
		for _, n := range field.Names {
			if n.Name == "_" || n.Name == "self" {
				continue
			}
			names = append(names, n.Name)
		}
	}
	return names
}

// Static returns fixed values. It serves callers that already know the
// identity and parameters, and tests.
type Static struct {
	Name string
	Args []string
}

// Identity returns s.Name.
func (s Static) Identity(any) (string, error) {
	if s.Name == "" {
		return "", fmt.Errorf("static introspector has no name")
	}
	return s.Name, nil
}

// Params returns a copy of s.Args.
func (s Static) Params(any) ([]string, error) {
	if s.Args == nil {
		return []string{}, nil
	}
	return slices.Clone(s.Args), nil
}
