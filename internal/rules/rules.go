// Package rules loads the configuration that drives a conversion: column
// typing, child identification and the output record layout.
package rules

import (
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/fold"
	"github.com/itsmostafa/bomfold/internal/materialize"
)

// EnvRulesPath names the rules file used when no --rules flag is given.
const EnvRulesPath = "BOMFOLD_RULES"

// TypeMapping assigns a value kind to a column. Unmapped columns are text.
type TypeMapping map[string]flat.Kind

// KindOf returns the mapped kind for key, defaulting to text.
func (m TypeMapping) KindOf(key string) flat.Kind {
	if kind, ok := m[key]; ok {
		return kind
	}
	return flat.KindText
}

// Rules is the resolved configuration.
type Rules struct {
	TypeMapping TypeMapping
	Policy      fold.Policy
	Output      materialize.Rules
}

// File mirrors the YAML document on disk.
type File struct {
	TypeMapping map[string]string `yaml:"type_mapping" validate:"omitempty,dive,keys,required,endkeys,oneof=text number"`
	Policy      PolicyFile        `yaml:"child_identification_policy"`
	OutputRules OutputRulesFile   `yaml:"output_rules"`
}

// PolicyFile holds exactly one child identification variant.
type PolicyFile struct {
	OrderedLevelKey string        `yaml:"ordered_level_key,omitempty"`
	Absolute        *AbsoluteFile `yaml:"absolute,omitempty"`
}

// AbsoluteFile configures parent lookup by key.
type AbsoluteFile struct {
	ParentKey    string `yaml:"parent_key"`
	ReferenceKey string `yaml:"reference_key"`
}

// OutputRulesFile selects the output format. Only item sync exists.
type OutputRulesFile struct {
	ItemSync *materialize.Rules `yaml:"item_sync" validate:"required"`
}

// Default returns the built-in rules for a level-ordered BOM export.
func Default() *Rules {
	return &Rules{
		TypeMapping: TypeMapping{"Quantity": flat.KindNumber},
		Policy:      fold.OrderedLevelKey{Key: "level"},
		Output: materialize.Rules{
			IDKey:       "Part Number",
			NameKey:     "Part Name",
			QuantityKey: "Quantity",
		},
	}
}

// Load reads and validates a rules file. An empty path falls back to
// $BOMFOLD_RULES, then to Default.
func Load(path string) (*Rules, error) {
	if path == "" {
		path = os.Getenv(EnvRulesPath)
	}
	if path == "" {
		return Default(), nil
	}

	// * read rules file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read rules file: %w", err)
	}

	// * parse and resolve
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return r, nil
}

var validate = validator.New()

// Parse decodes a YAML rules document.
func Parse(data []byte) (*Rules, error) {
	file := new(File)
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, bomerr.InvalidArgument("unable to parse rules: %v", err)
	}
	return file.Resolve()
}

// Resolve validates the file and converts it into Rules.
func (f *File) Resolve() (*Rules, error) {
	if err := validate.Struct(f); err != nil {
		return nil, bomerr.InvalidArgument("invalid rules: %v", err)
	}

	policy, err := f.Policy.resolve()
	if err != nil {
		return nil, err
	}

	mapping := make(TypeMapping, len(f.TypeMapping))
	for key, kind := range f.TypeMapping {
		if kind == "number" {
			mapping[key] = flat.KindNumber
		} else {
			mapping[key] = flat.KindText
		}
	}

	return &Rules{
		TypeMapping: mapping,
		Policy:      policy,
		Output:      *f.OutputRules.ItemSync,
	}, nil
}

func (p PolicyFile) resolve() (fold.Policy, error) {
	switch {
	case p.OrderedLevelKey != "" && p.Absolute != nil:
		return nil, bomerr.InvalidArgument("child_identification_policy must set only one of ordered_level_key, absolute")
	case p.OrderedLevelKey != "":
		return fold.OrderedLevelKey{Key: p.OrderedLevelKey}, nil
	case p.Absolute != nil:
		return fold.Absolute{ParentKey: p.Absolute.ParentKey, ReferenceKey: p.Absolute.ReferenceKey}, nil
	default:
		return nil, bomerr.InvalidArgument("child_identification_policy must set one of ordered_level_key, absolute")
	}
}

// Overrides replaces individual rule fields. Empty fields are left alone.
type Overrides struct {
	LevelKey      string
	IDKey         string
	NameKey       string
	QuantityKey   string
	NumberColumns []string
}

// Apply returns a copy of r with the overrides applied.
func (r *Rules) Apply(o Overrides) *Rules {
	out := &Rules{
		TypeMapping: maps.Clone(r.TypeMapping),
		Policy:      r.Policy,
		Output:      r.Output,
	}
	if out.TypeMapping == nil {
		out.TypeMapping = TypeMapping{}
	}

	if o.LevelKey != "" {
		out.Policy = fold.OrderedLevelKey{Key: o.LevelKey}
	}
	if o.IDKey != "" {
		out.Output.IDKey = o.IDKey
	}
	if o.NameKey != "" {
		out.Output.NameKey = o.NameKey
	}
	if o.QuantityKey != "" {
		out.Output.QuantityKey = o.QuantityKey
		out.TypeMapping[o.QuantityKey] = flat.KindNumber
	}
	for _, column := range o.NumberColumns {
		out.TypeMapping[column] = flat.KindNumber
	}
	return out
}

// String summarizes the rules on one line for logs and headers.
func (r *Rules) String() string {
	var numbers []string
	for key, kind := range r.TypeMapping {
		if kind == flat.KindNumber {
			numbers = append(numbers, key)
		}
	}
	sort.Strings(numbers)

	policy := "none"
	if lk, ok := r.Policy.(fold.OrderedLevelKey); ok {
		policy = fmt.Sprintf("%s(%s)", lk.Name(), lk.Key)
	} else if r.Policy != nil {
		policy = r.Policy.Name()
	}

	return fmt.Sprintf("policy=%s id=%q name=%q quantity=%q numbers=[%s]",
		policy, r.Output.IDKey, r.Output.NameKey, r.Output.QuantityKey, strings.Join(numbers, ","))
}
