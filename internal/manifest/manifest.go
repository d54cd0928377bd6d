// Package manifest loads the description of a plugin's functions: the
// library they live in, their SQL return types and the cases used to check
// them. Manifests are YAML or TOML.
package manifest

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/semihalev/go-udf"
)

// Manifest defines the top-level config object
type Manifest struct {
	Soname    string     `yaml:"soname" toml:"soname"`       // shared library file name, as in CREATE FUNCTION
	Functions []Function `yaml:"functions" toml:"functions"` // functions exported by the library
}

// Function defines one loadable function
type Function struct {
	Name    string `yaml:"name" toml:"name"`       // SQL and symbol name
	Returns string `yaml:"returns" toml:"returns"` // integer or real
	Cases   []Case `yaml:"cases" toml:"cases"`     // checks run by udfctl run
}

// Case is one usage site: a single instance evaluated over rows.
type Case struct {
	Name      string `yaml:"name" toml:"name"`
	InitError string `yaml:"init_error" toml:"init_error"` // expected substring of the setup error, if setup must fail
	Rows      []Row  `yaml:"rows" toml:"rows"`
}

// Row is the arguments of one row and the expected outcome.
type Row struct {
	Args  []any `yaml:"args" toml:"args"`
	Want  any   `yaml:"want" toml:"want"`   // expected value
	Null  bool  `yaml:"null" toml:"null"`   // expect NULL
	Error bool  `yaml:"error" toml:"error"` // expect the error flag
}

var (
	identRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	sonameRe = regexp.MustCompile(`^[A-Za-z0-9_.+-]+$`)
)

// Load reads and validates a manifest file. The format is picked by
// extension: .yml, .yaml or none for YAML, .toml for TOML.
func Load(fname string) (*Manifest, error) {
	log.Printf("[DEBUG] load manifest %q", fname)
	data, err := os.ReadFile(fname) // nolint gosec
	if err != nil {
		return nil, fmt.Errorf("can't read manifest %s: %w", fname, err)
	}
	res := &Manifest{}
	if err := unmarshal(fname, data, res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", fname, err)
	}
	return res, nil
}

func unmarshal(fname string, data []byte, v any) error {
	switch {
	case strings.HasSuffix(fname, ".yml") || strings.HasSuffix(fname, ".yaml") || !strings.Contains(fname, "."):
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // strict mode, fail on unknown fields
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("can't unmarshal yaml manifest %s: %w", fname, err)
		}
	case strings.HasSuffix(fname, ".toml"):
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("can't unmarshal toml manifest %s: %w", fname, err)
		}
	default:
		return fmt.Errorf("unknown manifest format %s", fname)
	}
	return nil
}

// Validate checks names, return types and case arguments, reporting all
// problems at once.
func (m *Manifest) Validate() error {
	errs := &multierror.Error{ErrorFormat: joinFormat}
	if m.Soname != "" && !sonameRe.MatchString(m.Soname) {
		errs = multierror.Append(errs, fmt.Errorf("soname %q must be a plain file name", m.Soname))
	}
	if len(m.Functions) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("no functions defined"))
	}

	seen := make(map[string]bool)
	for i, fn := range m.Functions {
		if !identRe.MatchString(fn.Name) {
			errs = multierror.Append(errs, fmt.Errorf("function %d: invalid name %q", i, fn.Name))
		}
		key := strings.ToLower(fn.Name)
		if seen[key] {
			errs = multierror.Append(errs, fmt.Errorf("function %q defined twice", fn.Name))
		}
		seen[key] = true
		if _, err := fn.ReturnType(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("function %q: %w", fn.Name, err))
		}
		for _, c := range fn.Cases {
			if _, err := c.Values(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("function %q case %q: %w", fn.Name, c.Name, err))
			}
		}
	}
	return errs.ErrorOrNil()
}

// Function returns the function with the given name, case-insensitively.
func (m *Manifest) Function(name string) (Function, error) {
	for _, fn := range m.Functions {
		if strings.EqualFold(fn.Name, name) {
			return fn, nil
		}
	}
	return Function{}, fmt.Errorf("function %q not found in manifest", name)
}

// ReturnType maps the manifest keyword to the SQL return type. String and
// decimal results are not supported.
func (f Function) ReturnType() (udf.ReturnType, error) {
	switch strings.ToLower(f.Returns) {
	case "integer", "int", "":
		return udf.ReturnInteger, nil
	case "real", "double":
		return udf.ReturnReal, nil
	}
	return 0, fmt.Errorf("unsupported return type %q, only integer and real are allowed", f.Returns)
}
