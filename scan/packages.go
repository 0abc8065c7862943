package scan

import (
	"os"
	"slices"

	"golang.org/x/tools/go/packages"

	"github.com/refaktor/bindtrim/logger"
)

// PackagesConfig configures a [Packages] harvest.
type PackagesConfig struct {
	// Package patterns to load (as understood by the go tool).
	Patterns []string
	// Directory to load from. Defaults to the working directory.
	Dir string
	// Additional env vars (e.g. "GOOS=...", "GOARCH=...", "CGO_ENABLED=..." etc.)
	Env []string
	// Additional build flags (e.g. "-tags=...")
	BuildFlags []string
}

// Packages harvests identifiers from fully loaded packages instead of a
// raw source tree. This covers applications distributed as buildable
// modules, where the go tool already knows which files belong to the
// build.
//
// Package loading errors are reduced to warnings: a package that cannot
// be loaded contributes nothing, which for this analysis means lost
// savings rather than a wrong answer.
func Packages(c *PackagesConfig, log *logger.Logger) (IdentifierSet, error) {
	pc := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:        c.Dir,
		Env:        append(os.Environ(), c.Env...),
		BuildFlags: slices.Clone(c.BuildFlags),
	}
	pkgs, err := packages.Load(pc, c.Patterns...)
	if err != nil {
		return nil, err
	}

	ids := NewIdentifierSet()
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, err := range p.Errors {
			log.Warnf("package %v: %v", p.PkgPath, err)
		}
		for _, f := range p.Syntax {
			Collect(FileUnit(f), ids)
		}
	})
	return ids, nil
}
