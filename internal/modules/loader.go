package modules

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/funvibe/noisec/internal/astio"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/symbols"
	"github.com/funvibe/noisec/internal/vid"
)

// sourceFiles lists the AST files of fsys in lexical order, as slash
// separated paths relative to its root.
func sourceFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// hidden directories (.git, .cache) never hold package files
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), config.AstFileExt) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// hasSourceFiles checks if directory has any AST files.
func hasSourceFiles(dirPath string) bool {
	files, err := sourceFiles(os.DirFS(dirPath))
	return err == nil && len(files) > 0
}

// Loader turns directories of AST files into packages. Every file becomes
// one module whose vid is derived from its path.
type Loader struct {
	Verbose bool

	loaded map[string]*symbols.Package // cache by package name
}

func NewLoader() *Loader {
	return &Loader{loaded: make(map[string]*symbols.Package)}
}

func (l *Loader) logf(format string, args ...interface{}) {
	if l.Verbose {
		log.Printf("[noisec] "+format, args...)
	}
}

// Loaded returns the package called name if it was loaded before.
func (l *Loader) Loaded(name string) *symbols.Package {
	return l.loaded[name]
}

// LoadDir loads the package called name from a directory on disk.
func (l *Loader) LoadDir(name, dir string, compiled bool) (*symbols.Package, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("loading package %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loading package %s: %s is not a directory", name, dir)
	}
	if !hasSourceFiles(dir) {
		return nil, fmt.Errorf("loading package %s: no %s files found in %s", name, config.AstFileExt, dir)
	}
	return l.LoadFS(name, os.DirFS(dir), dir, compiled)
}

// LoadFS loads the package called name from fsys. root prefixes the file
// names recorded in modules and diagnostics. Modules of a compiled package
// are trusted: only their signatures are checked.
func (l *Loader) LoadFS(name string, fsys fs.FS, root string, compiled bool) (*symbols.Package, error) {
	if pkg, ok := l.loaded[name]; ok {
		return pkg, nil
	}

	files, err := sourceFiles(fsys)
	if err != nil {
		return nil, fmt.Errorf("loading package %s: %w", name, err)
	}

	pkg := &symbols.Package{Name: name}
	owners := make(map[string]string, len(files))
	for _, rel := range files {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("loading package %s: %w", name, err)
		}
		file := displayPath(root, rel)
		program, err := astio.Decode(data, file)
		if err != nil {
			return nil, err
		}

		v := vid.FromPath(rel, name)
		if prev, dup := owners[v.String()]; dup {
			return nil, fmt.Errorf("loading package %s: module %s is defined by both %s and %s", name, v, prev, file)
		}
		owners[v.String()] = file

		pkg.Modules = append(pkg.Modules, symbols.NewModule(v, program, compiled))
		l.logf("loaded module %s from %s", v, file)
	}

	l.loaded[name] = pkg
	return pkg, nil
}

func displayPath(root, rel string) string {
	if root == "" {
		return rel
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}
