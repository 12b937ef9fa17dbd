package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithYAMLDir loads translations from {lang}/{namespace}.yaml (or .yml) files.
//
//	en/errors.yaml
//	id/errors.yml
func WithYAMLDir(fsys fs.FS) Option {
	return func(i *I18n) error {
		return loadDir(i, fsys, []string{".yaml", ".yml"}, yaml.Unmarshal)
	}
}

// WithJSONDir loads translations from {lang}/{namespace}.json files.
func WithJSONDir(fsys fs.FS) Option {
	return func(i *I18n) error {
		return loadDir(i, fsys, []string{".json"}, json.Unmarshal)
	}
}

func loadDir(i *I18n, fsys fs.FS, exts []string, unmarshal func([]byte, any) error) error {
	return fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(filePath))
		if !matchesExt(ext, exts) {
			return nil
		}

		dir := path.Dir(filePath)
		if dir == "." || dir == "" {
			return fmt.Errorf("%w: file %q must be inside a language directory", ErrInvalidFile, filePath)
		}

		lang := path.Base(dir)
		namespace := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("reading %q: %w", filePath, err)
		}

		var translations map[string]any
		if err := unmarshal(data, &translations); err != nil {
			return fmt.Errorf("%w: parsing %q: %s", ErrInvalidFile, filePath, err)
		}

		i.addTranslations(lang, namespace, translations)
		return nil
	})
}

func matchesExt(ext string, exts []string) bool {
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
