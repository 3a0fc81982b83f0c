package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File YAML 規則檔格式
type File struct {
	ReplaceDefaults       bool       `yaml:"replace_defaults"`
	Harm                  []FileRule `yaml:"harm"`
	OutOfScope            []FileRule `yaml:"out_of_scope"`
	SpecialistIngredients []string   `yaml:"specialist_ingredients"`
}

// FileRule 規則檔中的單條規則
type FileRule struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
	Except   string `yaml:"except"`
	Weak     bool   `yaml:"weak"`
}

// LoadFile 讀取 YAML 規則檔並與內建規則合併；path 為空時回傳內建規則
func LoadFile(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return f.Build()
}

// Build 編譯規則檔內容；除非 replace_defaults，否則附加在內建規則之後
func (f *File) Build() (*RuleSet, error) {
	rs := &RuleSet{}
	if !f.ReplaceDefaults {
		rs = DefaultRuleSet()
	}

	harm, err := compileRules(f.Harm)
	if err != nil {
		return nil, err
	}
	scope, err := compileRules(f.OutOfScope)
	if err != nil {
		return nil, err
	}
	rs.Harm = append(rs.Harm, harm...)
	rs.OutOfScope = append(rs.OutOfScope, scope...)

	seen := make(map[string]struct{}, len(rs.Specialist))
	for _, s := range rs.Specialist {
		seen[s] = struct{}{}
	}
	for _, s := range f.SpecialistIngredients {
		s = strings.ToLower(strings.TrimSpace(s))
		if _, dup := seen[s]; s == "" || dup {
			continue
		}
		seen[s] = struct{}{}
		rs.Specialist = append(rs.Specialist, s)
	}
	return rs, nil
}

func compileRules(in []FileRule) ([]Rule, error) {
	out := make([]Rule, 0, len(in))
	for i, fr := range in {
		if fr.Name == "" {
			return nil, fmt.Errorf("rule #%d has no name", i+1)
		}
		if fr.Pattern == "" {
			return nil, fmt.Errorf("rule %q has no pattern", fr.Name)
		}
		r, err := NewRule(fr.Name, fr.Category, fr.Pattern)
		if err != nil {
			return nil, err
		}
		if fr.Except != "" {
			if r, err = r.WithExcept(fr.Except); err != nil {
				return nil, err
			}
		}
		r.Weak = fr.Weak
		out = append(out, r)
	}
	return out, nil
}

// LoadRegoFiles reads all .rego files from the given directory.
func LoadRegoFiles(dir string) (map[string]string, error) {
	modules := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".rego" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		modules[entry.Name()] = string(data)
	}
	return modules, nil
}
