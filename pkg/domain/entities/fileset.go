package entities

import (
	"sort"

	"github.com/tokamak-network/pages-deployer/internal/consts"
)

// FileSet maps a relative path inside the generated project to its content.
type FileSet map[string][]byte

func (f FileSet) Has(path string) bool {
	_, ok := f[path]
	return ok
}

func (f FileSet) String(path string) string {
	return string(f[path])
}

func (f FileSet) Clone() FileSet {
	out := make(FileSet, len(f))
	for path, content := range f {
		out[path] = append([]byte(nil), content...)
	}
	return out
}

// CommitOrder returns the paths in the order they are written to a
// repository: LICENSE, README.md, then everything else lexically.
func (f FileSet) CommitOrder() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		if path == consts.LicenseFile || path == consts.ReadmeFile {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	ordered := make([]string, 0, len(f))
	if f.Has(consts.LicenseFile) {
		ordered = append(ordered, consts.LicenseFile)
	}
	if f.Has(consts.ReadmeFile) {
		ordered = append(ordered, consts.ReadmeFile)
	}
	return append(ordered, paths...)
}
