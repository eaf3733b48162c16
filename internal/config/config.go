// Package config parses the optional ".snbuild.toml" file that sits beside
// an application's sources: a thin, spec-compatible override layer letting
// a project pin extra predefined macros, extra include search paths,
// vendored extra source globs, a remote include-root to fetch, and
// per-profile optimize/sanitize defaults, without repeating them on the
// command line every invocation.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the conventional name of the override file.
const FileName = ".snbuild.toml"

var defaultProfiles = map[string]ProfileSection{
	"release": {Optimize: true},
	"debug":   {},
}

// Config is the parsed contents of .snbuild.toml.
type Config struct {
	Target  TargetSection             `toml:"target"`
	Fetch   map[string]FetchSection   `toml:"fetch"`
	Profile map[string]ProfileSection `toml:"profile"`
}

// Profiles returns the configured profile names, sorted.
func (c Config) Profiles() []string {
	names := make([]string, 0, len(c.Profile))
	for name := range c.Profile {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TargetSection supplies extra compiler inputs merged on top of the
// compiler probe's own findings.
type TargetSection struct {
	Defines      map[string]string `toml:"defines"`
	IncludePaths []string          `toml:"include_paths"`
	ExtraSources []string          `toml:"extra_sources"`
}

// ProfileSection overrides the optimize/sanitize mode flags for one named
// build profile (e.g. "debug", "release", or a project-defined name).
type ProfileSection struct {
	Optimize bool `toml:"optimize"`
	Sanitize bool `toml:"sanitize"`
}

// FetchSection names a remote git source for a third-party include root
// that is not locally present.
type FetchSection struct {
	URL string `toml:"url"`
	Ref string `toml:"ref"`
}

// mergeStructs merges the fields of src into dst: slices are appended, maps
// are merged key-by-key, bools are OR'd, and other fields are overwritten
// only when the source value is non-zero. dst may also point to a map of
// structs, in which case each of src's entries is merged into dst's entry
// under the same key.
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() == reflect.Pointer && dstVal.Elem().Kind() == reflect.Map {
		dstMap, srcMap := dstVal.Elem(), reflect.ValueOf(src)
		for _, key := range srcMap.MapKeys() {
			merged := reflect.New(dstMap.Type().Elem())
			if existing := dstMap.MapIndex(key); existing.IsValid() {
				merged.Elem().Set(existing)
			}
			if err := mergeStructs(merged.Interface(), srcMap.MapIndex(key).Interface()); err != nil {
				return err
			}
			dstMap.SetMapIndex(key, merged.Elem())
		}
		return nil
	}
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}
	if srcVal.Kind() != reflect.Struct {
		return fmt.Errorf("src must be a struct or a pointer to a struct")
	}
	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)
		if !dstField.CanSet() {
			continue
		}

		switch dstField.Kind() {
		case reflect.Slice:
			if !srcField.IsNil() {
				dstField.Set(reflect.AppendSlice(dstField, srcField))
			}
		case reflect.Map:
			if !srcField.IsNil() {
				if dstField.IsNil() {
					dstField.Set(reflect.MakeMap(dstField.Type()))
				}
				for _, key := range srcField.MapKeys() {
					dstField.SetMapIndex(key, srcField.MapIndex(key))
				}
			}
		case reflect.Bool:
			dstField.SetBool(dstField.Bool() || srcField.Bool())
		default:
			if !srcField.IsZero() {
				dstField.Set(srcField)
			}
		}
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func unmarshalSection(rawCfg map[string]any, name string, dst any) error {
	if data, ok := rawCfg[name]; ok {
		if err := toml.Unmarshal([]byte(mustMarshal(data)), dst); err != nil {
			return fmt.Errorf("failed to parse [%s] section: %w", name, err)
		}
	}
	return nil
}

// unmarshalConditionalSection parses a [name] table, treating any sub-table
// whose key compiles as an expr-lang boolean expression (e.g.
// "target_os == \"linux\"") as a conditional overlay: it is merged into dst
// only if the expression evaluates true against env.
func unmarshalConditionalSection[T any](rawCfg map[string]any, name string, dst *T, env Env) error {
	sectionData, ok := rawCfg[name]
	if !ok {
		return nil
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	baseFields := make(map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range sectionMap {
		if subMap, ok := val.(map[string]any); ok {
			if _, err := expr.Compile(key, expr.Env(env)); err == nil {
				conditionalFields[key] = subMap
				continue
			}
		}
		baseFields[key] = val
	}

	if len(baseFields) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), dst); err != nil {
			return fmt.Errorf("failed to parse base [%s] section: %w", name, err)
		}
	}

	for expression, condMap := range conditionalFields {
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return fmt.Errorf("failed to compile expression for [%s.%q]: %w", name, expression, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return fmt.Errorf("failed to run expression for [%s.%q]: %w", name, expression, err)
		}
		matched, ok := result.(bool)
		if !ok || !matched {
			continue
		}

		var condSection T
		if err := toml.Unmarshal([]byte(mustMarshal(condMap)), &condSection); err != nil {
			return fmt.Errorf("failed to parse conditional section [%s.%q]: %w", name, expression, err)
		}
		if err := mergeStructs(dst, condSection); err != nil {
			return fmt.Errorf("failed to merge conditional section [%s.%q]: %w", name, expression, err)
		}
	}

	return nil
}

var exprPattern = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString finds and evaluates every {{ expr }} interpolation in s.
func evaluateString(s string, env Env) (string, error) {
	matches := exprPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end, exprStart, exprEnd := m[0], m[1], m[2], m[3]
		b.WriteString(s[last:start])

		expression := strings.TrimSpace(s[exprStart:exprEnd])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return "", fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("failed to run expression %q: %w", expression, err)
		}
		fmt.Fprintf(&b, "%v", result)
		last = end
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func processExpressions(data any, env Env) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processed, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processed
		}
		return v, nil
	case []any:
		for i, item := range v {
			processed, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processed
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

// Parse reads a .snbuild.toml document from rdr, evaluating {{ expr }}
// interpolations and conditional profile/target sections against env.
func Parse(rdr io.Reader, env Env) (*Config, error) {
	var raw map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	processed, err := processExpressions(raw, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in config: %w", err)
	}
	raw = processed.(map[string]any)

	cfg := &Config{Profile: defaultProfiles}

	if err := unmarshalConditionalSection(raw, "target", &cfg.Target, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(raw, "profile", &cfg.Profile, env); err != nil {
		return nil, err
	}
	if err := unmarshalSection(raw, "fetch", &cfg.Fetch); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseFile opens path and parses it with Parse. A missing path is
// reported as the os.Open error, for which os.IsNotExist is true; callers
// that treat .snbuild.toml as optional check for that error.
func ParseFile(path string, env Env) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(bufio.NewReader(f), env)
}

// Env is the expr-lang evaluation environment available to {{ expr }}
// interpolations and conditional section keys.
type Env struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

// NewEnv builds an Env from the host's runtime and current environment
// variables.
func NewEnv() Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.IndexByte(e, '='); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}
	return Env{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}
