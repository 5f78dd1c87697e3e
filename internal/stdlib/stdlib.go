// Package stdlib embeds the pre-built standard library package. Its modules
// are compiled: bodies are trusted and only signatures are checked.
package stdlib

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/funvibe/noisec/internal/config"
)

//go:embed std/*.ast.yaml
var files embed.FS

// Root is the directory name recorded in the file names of std modules.
const Root = "std"

// FS returns the AST files of the standard library.
func FS() fs.FS {
	sub, err := fs.Sub(files, Root)
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// Modules lists the module names of the standard library, sorted.
func Modules() []string {
	entries, err := fs.ReadDir(files, Root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), config.AstFileExt); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
