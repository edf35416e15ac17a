package prompt

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAMLMapping loads one prompt YAML file as a flat string mapping.
func LoadYAMLMapping(fsys fs.FS, filePath string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompt yaml: %w", err)
	}

	mapping := make(map[string]string)
	for key, value := range raw {
		if value == nil {
			mapping[key] = ""
			continue
		}
		mapping[key] = fmt.Sprint(value)
	}

	system, ok := mapping["system"]
	if ok && strings.TrimSpace(system) != "" {
		if err := ValidateSystemStatic(filePath, system); err != nil {
			return nil, err
		}
	}

	return mapping, nil
}

// LoadYAMLDir loads every prompt YAML file in dir, keyed by base name.
func LoadYAMLDir(fsys fs.FS, dir string) (map[string]map[string]string, error) {
	paths, err := fs.Glob(fsys, path.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("glob prompt dir: %w", err)
	}
	yamlPaths, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob prompt dir: %w", err)
	}
	paths = append(paths, yamlPaths...)

	prompts := make(map[string]map[string]string)
	for _, filePath := range paths {
		promptName := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
		mapping, err := LoadYAMLMapping(fsys, filePath)
		if err != nil {
			return nil, err
		}
		prompts[promptName] = mapping
	}
	return prompts, nil
}

// Get looks up a prompt map by name from a loaded collection.
func Get(prompts map[string]map[string]string, name string, label string) (map[string]string, error) {
	if prompts == nil {
		if label == "" {
			return nil, fmt.Errorf("prompts not initialized")
		}
		return nil, fmt.Errorf("%s prompts not initialized", label)
	}
	promptMap, ok := prompts[name]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}
	return promptMap, nil
}

// Field looks up a required field in a prompt map.
func Field(data map[string]string, key string, label string) (string, error) {
	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("prompt field missing: %s", label)
	}
	return value, nil
}
