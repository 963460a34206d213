package apidiff

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
)

// ExtractionError means a source tree could not be turned into an interface
// model. It is fatal: a partial model would produce false negatives, so the
// whole command aborts.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting interface model from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extract walks every importable package under root and builds the
// structural model of its publicly reachable callables. The same walk
// handles a checked-out source tree and an unpacked distribution, so the
// on-disk packaging format cannot leak into the model.
func Extract(ctx context.Context, root, projectName string) (pymodel.InterfaceModel, error) {
	model := pymodel.InterfaceModel{
		ProjectName: projectName,
		Symbols:     make(map[string]pymodel.Symbol),
	}

	base, packages, err := findPackages(root)
	if err != nil {
		return pymodel.InterfaceModel{}, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	for _, pkg := range packages {
		walkErr := filepath.WalkDir(filepath.Join(base, pkg), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// Skip symlinks to prevent symlink-based path escapes.
			if d.Type()&os.ModeSymlink != 0 {
				return nil
			}

			if d.IsDir() {
				if path != filepath.Join(base, pkg) && !importableDir(path, d.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			name := d.Name()
			if !strings.HasSuffix(name, ".py") {
				return nil
			}
			if strings.HasPrefix(name, "_") && name != "__init__.py" {
				return nil
			}

			module, relErr := modulePath(base, path)
			if relErr != nil {
				return relErr
			}
			return extractFile(ctx, parser, path, module, model.Symbols)
		})
		if walkErr != nil {
			var extErr *ExtractionError
			if errors.As(walkErr, &extErr) {
				return pymodel.InterfaceModel{}, walkErr
			}
			return pymodel.InterfaceModel{}, &ExtractionError{Path: root, Err: walkErr}
		}
	}

	return model, nil
}

// findPackages locates the top-level import packages under root. A src/
// layout is honored when no package lives at the root itself, and an
// unpacked sdist, which nests everything under a single <name>-<version>/
// directory, is searched one level down. Distribution metadata directories
// (*.dist-info, *.data) have no __init__.py and fall out naturally.
func findPackages(root string) (string, []string, error) {
	for _, base := range searchBases(root) {
		if !isDir(base) {
			continue
		}
		packages, err := topLevelPackages(base)
		if err != nil {
			return "", nil, &ExtractionError{Path: base, Err: err}
		}
		if len(packages) > 0 {
			return base, packages, nil
		}
	}
	return "", nil, &ExtractionError{Path: root, Err: errors.New("no importable packages found")}
}

// searchBases lists the directories that may hold the import packages, in
// precedence order: the root itself, its src/, then an sdist's sole
// top-level directory and that directory's src/.
func searchBases(root string) []string {
	bases := []string{root, filepath.Join(root, "src")}
	if sole := soleSubdirectory(root); sole != "" {
		bases = append(bases, sole, filepath.Join(sole, "src"))
	}
	return bases
}

// soleSubdirectory returns the single candidate subdirectory of dir, or ""
// when dir holds none or more than one.
func soleSubdirectory(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var sole string
	for _, e := range entries {
		if !e.IsDir() || excludedDirName(e.Name()) {
			continue
		}
		if sole != "" {
			return ""
		}
		sole = filepath.Join(dir, e.Name())
	}
	return sole
}

func topLevelPackages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var packages []string
	for _, e := range entries {
		if !e.IsDir() || !importableDir(filepath.Join(dir, e.Name()), e.Name()) {
			continue
		}
		if hasInit(filepath.Join(dir, e.Name())) {
			packages = append(packages, e.Name())
		}
	}
	return packages, nil
}

// importableDir reports whether a directory can contribute public modules:
// not hidden, not underscore-private, not a test tree, and an actual package.
func importableDir(path, name string) bool {
	if excludedDirName(name) {
		return false
	}
	return hasInit(path) || !isDir(path)
}

// excludedDirName rejects hidden, private, test, and distribution-metadata
// directory names.
func excludedDirName(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	if name == "tests" || name == "testdata" {
		return true
	}
	return strings.HasSuffix(name, ".dist-info") || strings.HasSuffix(name, ".data") || strings.HasSuffix(name, ".egg-info")
}

func hasInit(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "__init__.py"))
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// modulePath derives the dotted module path of a file relative to the
// package search base: pkg/animals.py -> pkg.animals, pkg/__init__.py -> pkg.
func modulePath(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".py")
	rel = strings.TrimSuffix(rel, "/__init__")
	return strings.ReplaceAll(rel, "/", "."), nil
}

// extractFile parses one module and records its public callables.
func extractFile(ctx context.Context, parser *sitter.Parser, path, module string, symbols map[string]pymodel.Symbol) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return &ExtractionError{Path: path, Err: err}
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return &ExtractionError{Path: path, Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return &ExtractionError{Path: path, Err: errors.New("source contains syntax errors")}
	}

	res := newResolver(module, root, content)

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			addCallable(child, content, res, module, "", nil, symbols)
		case "class_definition":
			addClass(child, content, res, module, symbols)
		case "decorated_definition":
			def, decorators := unwrapDecorated(child, content)
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				addCallable(def, content, res, module, "", decorators, symbols)
			case "class_definition":
				addClass(def, content, res, module, symbols)
			}
		}
	}

	return nil
}

// addClass records every public method of a public class, including dunder
// callables like __init__.
func addClass(node *sitter.Node, src []byte, res *resolver, module string, symbols map[string]pymodel.Symbol) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := nameNode.Content(src)
	if !publicName(className) {
		return
	}
	owningClass := module + "." + className

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}

	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			addCallable(child, src, res, module, owningClass, nil, symbols)
		case "decorated_definition":
			def, decorators := unwrapDecorated(child, src)
			if def != nil && def.Type() == "function_definition" {
				addCallable(def, src, res, module, owningClass, decorators, symbols)
			}
		}
	}
}

// addCallable records one function or method symbol keyed by its
// fully-qualified name.
func addCallable(node *sitter.Node, src []byte, res *resolver, module, owningClass string, decorators []string, symbols map[string]pymodel.Symbol) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(src)
	if !publicName(name) {
		return
	}

	sym := pymodel.Symbol{
		Name:       name,
		Kind:       pymodel.SymbolFunction,
		Module:     module,
		ReturnType: pymodel.TypeUnknown,
	}
	if owningClass != "" {
		sym.Kind = pymodel.SymbolMethod
		sym.OwningClass = owningClass
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		sym.Parameters = classifyParameters(params, src, res, sym.Kind == pymodel.SymbolMethod, decorators)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sym.ReturnType = res.canonical(ret.Content(src))
	}

	symbols[sym.FQName()] = sym
}

// unwrapDecorated returns the wrapped definition and its decorator names.
func unwrapDecorated(node *sitter.Node, src []byte) (*sitter.Node, []string) {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			inner := child.Child(j)
			switch inner.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, inner.Content(src))
			case "call":
				if fn := inner.ChildByFieldName("function"); fn != nil {
					decorators = append(decorators, fn.Content(src))
				}
			}
		}
	}
	return node.ChildByFieldName("definition"), decorators
}

// publicName applies Python's visibility convention: leading underscore is
// private, except dunder names (__init__, __call__, ...) which are public.
func publicName(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	return !strings.HasPrefix(name, "_")
}
