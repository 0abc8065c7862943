package scan

import (
	"archive/zip"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/refaktor/bindtrim/logger"
)

// Dir harvests every loadable code unit under root into one
// IdentifierSet: plain Go source files, zip bundles containing Go
// source, and nested package directories. An unreadable or malformed
// unit is skipped with a warning; only a failure to read the tree
// itself is fatal.
func Dir(root string, log *logger.Logger) (IdentifierSet, error) {
	ids := NewIdentifierSet()
	if err := scanDir(root, ids, log); err != nil {
		return nil, err
	}
	return ids, nil
}

func scanDir(dirPath string, ids IdentifierSet, log *logger.Logger) error {
	goModPath := filepath.Join(dirPath, "go.mod")
	if data, err := os.ReadFile(goModPath); err == nil {
		if mod, err := modfile.Parse(goModPath, data, nil); err == nil {
			log.Infof("scanning module %v", mod.Module.Mod.Path)
		} else {
			log.Warnf("skipping malformed %v: %v", goModPath, err)
		}
	}

	ents, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}
	for _, ent := range ents {
		fsPath := filepath.Join(dirPath, ent.Name())
		if ent.IsDir() {
			if strings.HasPrefix(ent.Name(), "_") || strings.HasPrefix(ent.Name(), ".") {
				// ignore dirs ignored by the go tool (https://pkg.go.dev/cmd/go)
				continue
			}
			if ent.Name() == "vendor" {
				continue
			}
			if err := scanDir(fsPath, ids, log); err != nil {
				return err
			}
		} else if strings.HasSuffix(ent.Name(), ".go") {
			if err := scanGoFile(fsPath, nil, ids); err != nil {
				log.Warnf("skipping unparsable %v: %v", fsPath, err)
			}
		} else if strings.HasSuffix(ent.Name(), ".zip") {
			if err := scanZipBundle(fsPath, ids, log); err != nil {
				log.Warnf("skipping unreadable bundle %v: %v", fsPath, err)
			}
		}
	}
	return nil
}

// src follows the [parser.ParseFile] convention: nil means read the
// file, a []byte overrides its contents.
func scanGoFile(filename string, src any, ids IdentifierSet) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return err
	}
	Collect(FileUnit(f), ids)
	return nil
}

// scanZipBundle harvests the Go source files contained in a zip
// archive, without extracting it to disk.
func scanZipBundle(pathname string, ids IdentifierSet, log *logger.Logger) error {
	zr, err := zip.OpenReader(pathname)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if !strings.HasSuffix(zf.Name, ".go") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			log.Warnf("skipping unreadable %v in %v: %v", zf.Name, pathname, err)
			continue
		}
		src, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Warnf("skipping unreadable %v in %v: %v", zf.Name, pathname, err)
			continue
		}
		if err := scanGoFile(zf.Name, src, ids); err != nil {
			log.Warnf("skipping unparsable %v in %v: %v", zf.Name, pathname, err)
		}
	}
	return nil
}
