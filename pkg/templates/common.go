package templates

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tokamak-network/pages-deployer/internal/consts"
)

const bootstrapCSS = "https://cdn.jsdelivr.net/npm/bootstrap@5.0.2/dist/css/bootstrap.min.css"
const bootstrapJS = "https://cdn.jsdelivr.net/npm/bootstrap@5.0.2/dist/js/bootstrap.bundle.min.js"

var seedPattern = regexp.MustCompile(`seed\s*=\s*([\w-]+)`)

// briefSeed returns the value of a "seed=<word>" marker or fallback.
func briefSeed(brief, fallback string) string {
	if m := seedPattern.FindStringSubmatch(brief); m != nil {
		return m[1]
	}
	return fallback
}

func hashSeed(brief string) string {
	sum := md5.Sum([]byte(brief))
	return hex.EncodeToString(sum[:])[:8]
}

type executor interface {
	Name() string
	Execute(w io.Writer, data any) error
}

func render(t executor, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

type readme struct {
	Title  string
	Brief  string
	Round  int
	Setup  []string
	Usage  string
	Checks []string
}

// Bytes renders the README. The brief is embedded verbatim.
func (r readme) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "%s\n\n", r.Brief)
	if r.Round > 1 {
		fmt.Fprintf(&b, "_Revision: round %d._\n\n", r.Round)
	}
	b.WriteString("## Setup\n\n")
	for i, step := range r.Setup {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\n## Usage\n\n")
	fmt.Fprintf(&b, "%s\n", r.Usage)
	if len(r.Checks) > 0 {
		b.WriteString("\n## Checks\n\n")
		for _, check := range r.Checks {
			fmt.Fprintf(&b, "- %s\n", check)
		}
	}
	b.WriteString("\n## License\n\n")
	fmt.Fprintf(&b, "Released under the MIT License, see [%s](%s).\n", consts.LicenseFile, consts.LicenseFile)
	return []byte(b.String())
}

// containsAny reports whether s contains any of the needles, case-insensitively.
func containsAny(s string, needles ...string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
