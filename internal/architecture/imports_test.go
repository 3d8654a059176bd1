package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// layerRules maps a directory prefix under the module root to the internal
// prefixes its files must not import. domain and pkg sit at the bottom,
// data and clients in the middle, services above them, http above services,
// and app is the composition root with no restrictions.
var layerRules = map[string][]string{
	"internal/domain/": {
		"internal/data/",
		"internal/services/",
		"internal/http/",
		"internal/app/",
		"internal/clients/",
		"internal/realtime/",
	},
	"internal/pkg/": {
		"internal/domain/",
		"internal/data/",
		"internal/services/",
		"internal/http/",
		"internal/app/",
		"internal/clients/",
		"internal/realtime/",
	},
	"internal/clients/": {
		"internal/data/",
		"internal/services/",
		"internal/http/",
		"internal/app/",
		"internal/realtime/",
	},
	"internal/realtime/": {
		"internal/domain/",
		"internal/data/",
		"internal/services/",
		"internal/http/",
		"internal/app/",
		"internal/clients/",
	},
	"internal/observability/": {
		"internal/data/",
		"internal/services/",
		"internal/http/",
		"internal/app/",
	},
	"internal/data/": {
		"internal/services/",
		"internal/http/",
		"internal/app/",
		"internal/realtime/",
		"internal/clients/",
	},
	"internal/services/": {
		"internal/http/",
		"internal/app/",
	},
	"internal/http/": {
		"internal/data/",
		"internal/app/",
		"internal/clients/",
	},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleInfo(t)

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkGoFiles(t, root, func(rel string, imports []string) {
		var disallowed []string
		for prefix, rules := range layerRules {
			if strings.HasPrefix(rel, prefix) {
				disallowed = rules
				break
			}
		}
		if len(disallowed) == 0 {
			return
		}
		for _, imp := range imports {
			for _, bad := range disallowed {
				if strings.HasPrefix(imp, modulePath+"/"+bad) {
					violations = append(violations, violation{file: rel, imp: imp, rule: bad})
				}
			}
		}
	})

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

// External SDK wrappers stay behind the service layer. Handlers and repos
// talk to services, never to internal/clients directly.
func TestClientsImportedOnlyByServicesAndApp(t *testing.T) {
	root, modulePath := moduleInfo(t)

	allowed := []string{"internal/clients/", "internal/services/", "internal/app/"}

	type violation struct {
		file string
		imp  string
	}
	var violations []violation

	walkGoFiles(t, root, func(rel string, imports []string) {
		for _, prefix := range allowed {
			if strings.HasPrefix(rel, prefix) {
				return
			}
		}
		for _, imp := range imports {
			if strings.HasPrefix(imp, modulePath+"/internal/clients/") {
				violations = append(violations, violation{file: rel, imp: imp})
			}
		}
	})

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("internal/clients imported outside services and app:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q\n", v.file, v.imp)
		}
		t.Fatal(b.String())
	}
}

// walkGoFiles invokes fn for every .go file under root/internal with its
// root-relative slash path and its import paths.
func walkGoFiles(t *testing.T, root string, fn func(rel string, imports []string)) {
	t.Helper()

	fset := token.NewFileSet()
	internalDir := filepath.Join(root, "internal")

	err := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		var imports []string
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			imports = append(imports, imp)
		}
		fn(rel, imports)
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}
}

func moduleInfo(t *testing.T) (root, modulePath string) {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			root = dir
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above %s", dir)
		}
		dir = parent
	}

	f, err := os.Open(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("open go.mod: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			modulePath = strings.TrimSpace(strings.TrimPrefix(line, "module "))
			break
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	if modulePath == "" {
		t.Fatalf("module path not found in go.mod")
	}
	return root, modulePath
}
