package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Dir is the on-disk prefab directory. Files found there shadow the embedded
// copies, which is what makes hot reload work.
var Dir = "prefabs"

// SetDir changes the on-disk prefab directory. An empty dir restores the
// default.
func SetDir(dir string) {
	if strings.TrimSpace(dir) == "" {
		dir = "prefabs"
	}
	Dir = filepath.Clean(dir)
}

func LoadScript(name string) ([]byte, error) {
	clean := CleanScriptPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

// ResolvePath returns where a file referenced by a prefab lives on disk.
// Absolute paths are returned unchanged.
func ResolvePath(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return diskPrefabPath(cleanPrefabPath(file))
}

// IsScript reports whether path names a director script.
func IsScript(path string) bool {
	return isScriptFile(path)
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, filepath.ToSlash(Dir)+"/"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

// CleanScriptPath normalizes a script reference to its scripts/ relative
// form, whether it was given bare, relative to the prefab dir or with the
// prefab dir prefix.
func CleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := cleanPrefabPath(path)
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if filepath.IsAbs(path) {
		s = filepath.Base(path)
	}

	return "scripts/" + s
}

func diskPrefabPath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}
