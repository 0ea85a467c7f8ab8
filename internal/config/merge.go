package config

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/goccy/go-yaml"
)

// Merge combines multiple configuration files (or directories of them) into
// one YAML document. Later files override earlier ones on scalar conflicts
// unless conflictError is set, in which case a conflict is an error.
func Merge(configFiles []string, conflictError bool) ([]byte, error) {

	var paths []string
	for _, f := range configFiles {
		if err := filepath.Walk(f, func(path string, fi fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			paths = append(paths, path)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	docs := make([]map[string]any, 0, len(paths))
	for _, f := range paths {
		bs, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %v: %v", f, err)
		}
		var x map[string]any
		if err := yaml.Unmarshal(bs, &x); err != nil {
			return nil, fmt.Errorf("failed to unmarshal configuration file %v: %v", f, err)
		}
		docs = append(docs, x)
	}

	merged, err := merge(docs, "", conflictError)
	if err != nil {
		return nil, err
	}

	return yaml.Marshal(merged)
}

func merge(docs []map[string]any, path string, conflictError bool) (map[string]any, error) {
	result := map[string]any{}

	for _, doc := range docs {
		for _, key := range slices.Sorted(maps.Keys(doc)) {
			value := doc[key]
			keyPath := key
			if path != "" {
				keyPath = path + "." + key
			}

			existing, ok := result[key]
			if !ok {
				result[key] = value
				continue
			}

			existingMap, existingIsMap := existing.(map[string]any)
			valueMap, valueIsMap := value.(map[string]any)

			switch {
			case existingIsMap && valueIsMap:
				m, err := merge([]map[string]any{existingMap, valueMap}, keyPath, conflictError)
				if err != nil {
					return nil, err
				}
				result[key] = m
			case reflect.DeepEqual(existing, value):
				// identical values never conflict
			case conflictError:
				return nil, fmt.Errorf("conflicting values for %q", keyPath)
			default:
				result[key] = value // later file wins
			}
		}
	}

	return result, nil
}
