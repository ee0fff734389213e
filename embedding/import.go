package embedding

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daivm/dai/object"
	"github.com/daivm/dai/vm"
)

// daiPathEnv is the search-path environment variable consulted once the
// importing file's own directory doesn't contain the target (spec §C
// "Module search path": DAI_PATH-style, $DAIPATH, OS path-list separated).
const daiPathEnv = "DAIPATH"

// resolveImport is installed as the VM's Importer: it resolves path
// relative to fromFile's directory first, then each DAIPATH entry,
// reusing an already-loaded-or-loading module by absolute filename
// before reading and compiling a fresh one. Grounded on the teacher's
// vmfactory.VMFactory.createCompilerCallback, which the same way
// resolves a file, compiles it with the shared compiler, and runs it
// against the same VM/context rather than spinning up a separate
// interpreter per include.
func (d *Dai) resolveImport(v *vm.VM, path, fromFile string) (*object.Module, error) {
	abs, err := findModuleFile(path, fromFile)
	if err != nil {
		return nil, err
	}

	if mod, ok := v.Modules()[abs]; ok {
		return mod, nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("import() failed to read file: %s", abs)
	}

	mod, err := compileModule(d.comp, string(src), abs)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// findModuleFile implements the dirname-of-importing-file-first, then
// DAIPATH-list resolution order. An already-absolute path is used as-is,
// matching the original's abs_path short-circuit for scripts invoked
// directly by filename.
func findModuleFile(path, fromFile string) (string, error) {
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return path, nil
		}
		return "", fmt.Errorf("import() failed to read file: %s", path)
	}

	candidate := filepath.Join(filepath.Dir(fromFile), path)
	if fileExists(candidate) {
		return filepath.Abs(candidate)
	}

	for _, dir := range filepath.SplitList(os.Getenv(daiPathEnv)) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, path)
		if fileExists(candidate) {
			return filepath.Abs(candidate)
		}
	}

	return "", fmt.Errorf("import() failed to read file: %s", path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// moduleName derives a module's display name from its filename the way
// the original strips the ".dai" suffix from a basename: "util.dai" ->
// "util".
func moduleName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
