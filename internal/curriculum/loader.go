package curriculum

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Subdirectories scanned for YAML content.
const (
	LessonsDir = "lessons"
	MenusDir   = "menus"
	DomainsDir = "domains"
)

// LoadDir builds a Catalog from a content directory.
//
// YAML files are read from the lessons, menus and domains subdirectories;
// CUE files are read from anywhere under dir. Unknown YAML keys are ignored
// because content files carry presentation fields this package does not model.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("curriculum directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing curriculum directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	b := NewBuilder()
	files := 0

	// Domains first so explicit titles win over domains implied by lessons.
	for _, sub := range []struct {
		name string
		add  func(path string, data []byte) error
	}{
		{DomainsDir, func(path string, data []byte) error {
			var d DomainDoc
			if err := decodeYAML(data, &d); err != nil {
				return &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Path: path}
			}
			return b.AddDomain(d, path)
		}},
		{LessonsDir, func(path string, data []byte) error {
			var e EntityDoc
			if err := decodeYAML(data, &e); err != nil {
				return &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Path: path}
			}
			return b.AddEntity(KindLesson, e, path)
		}},
		{MenusDir, func(path string, data []byte) error {
			var e EntityDoc
			if err := decodeYAML(data, &e); err != nil {
				return &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Path: path}
			}
			return b.AddEntity(KindMenu, e, path)
		}},
	} {
		paths, err := filepath.Glob(filepath.Join(dir, sub.name, "*.yaml"))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error()}
		}
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: path}
			}
			if err := sub.add(path, data); err != nil {
				return nil, err
			}
			files++
		}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	ctx := cuecontext.New()
	for _, path := range cueFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: path}
		}
		doc, err := decodeCUE(ctx, path, data)
		if err != nil {
			return nil, err
		}
		if err := b.AddDocument(doc, path); err != nil {
			return nil, err
		}
		files++
	}

	if files == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no curriculum files found in %s", dir)}
	}
	return b.Build(), nil
}

// ParseDocument decodes a YAML curriculum document, as embedded in
// scenario files and fixtures.
func ParseDocument(data []byte) (*Catalog, error) {
	var doc Document
	if err := decodeYAML(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: err.Error()}
	}
	b := NewBuilder()
	if err := b.AddDocument(doc, ""); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func decodeYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeCUE(ctx *cue.Context, path string, data []byte) (Document, error) {
	var doc Document
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return doc, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("compiling CUE: %v", err), Path: path}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return doc, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("CUE value is not concrete: %v", err), Path: path}
	}
	if err := v.Decode(&doc); err != nil {
		return doc, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decoding CUE: %v", err), Path: path}
	}
	return doc, nil
}
