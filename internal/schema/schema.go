// Package schema holds the declarative per-category schemas: canonical column
// names, category detection, type coercion and row validation.
//
// Schemas are loaded once at startup and are read-only afterwards, so a
// *Registry can be shared by concurrent runs.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var defaultSchemas []byte

type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeNumber  ColumnType = "number"
	TypeDate    ColumnType = "date"
)

type RuleKind string

const (
	RuleMin           RuleKind = "min"
	RuleOneOf         RuleKind = "one_of"
	RuleProductEquals RuleKind = "product_equals"
)

// DefaultTolerance is the absolute epsilon used by product_equals rules that do not set one.
var DefaultTolerance = decimal.New(1, -6)

type Column struct {
	Name     string     `yaml:"name"`
	Type     ColumnType `yaml:"type"`
	Required bool       `yaml:"required"`
	Lower    bool       `yaml:"lower"`
}

type Rule struct {
	Name      string   `yaml:"name"`
	Kind      RuleKind `yaml:"kind"`
	Column    string   `yaml:"column"`
	Operands  []string `yaml:"operands"`
	Values    []string `yaml:"values"`
	Value     *float64 `yaml:"value"`
	Tolerance *float64 `yaml:"tolerance"`

	min       decimal.Decimal
	tolerance decimal.Decimal
}

// Derive fills Column with the product of the Product columns when a file lacks it.
type Derive struct {
	Column  string   `yaml:"column"`
	Product []string `yaml:"product"`
}

type Category struct {
	Name    domain.Category `yaml:"name"`
	Detect  [][]string      `yaml:"detect"`
	Derive  []Derive        `yaml:"derive"`
	Columns []Column        `yaml:"columns"`
	Rules   []Rule          `yaml:"rules"`

	columns map[string]Column
}

func (c *Category) Column(name string) (Column, bool) {
	col, ok := c.columns[name]
	return col, ok
}

type document struct {
	Synonyms   map[string][]string `yaml:"synonyms"`
	Categories []*Category         `yaml:"categories"`
}

type Registry struct {
	categories []*Category
	byName     map[domain.Category]*Category
	synonyms   map[string]string
}

// Default returns the registry built from the embedded schemas.
func Default() (*Registry, error) {
	return Parse(defaultSchemas)
}

// Load reads schemas from a YAML file, falling back to the embedded ones when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas file %q: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schemas: %w", err)
	}

	r := &Registry{
		byName:   make(map[domain.Category]*Category, len(doc.Categories)),
		synonyms: make(map[string]string),
	}

	for canonical, variants := range doc.Synonyms {
		canonical = NormalizeColumn(canonical)
		for _, v := range variants {
			r.synonyms[NormalizeColumn(v)] = canonical
		}
	}

	for _, c := range doc.Categories {
		if err := r.addCategory(c); err != nil {
			return nil, err
		}
	}

	if len(r.categories) == 0 {
		return nil, errors.New("no categories declared")
	}

	return r, nil
}

func (r *Registry) addCategory(c *Category) error {
	if c.Name == "" || c.Name == domain.CategoryUnknown {
		return fmt.Errorf("invalid category name %q", c.Name)
	}
	if _, ok := r.byName[c.Name]; ok {
		return fmt.Errorf("category %q declared twice", c.Name)
	}
	if len(c.Detect) == 0 {
		return fmt.Errorf("category %q: no detect column sets", c.Name)
	}

	c.columns = make(map[string]Column, len(c.Columns))
	for i, col := range c.Columns {
		switch col.Type {
		case TypeString, TypeInteger, TypeNumber, TypeDate:
		case "":
			col.Type = TypeString
			c.Columns[i] = col
		default:
			return fmt.Errorf("category %q: column %q has unknown type %q", c.Name, col.Name, col.Type)
		}
		c.columns[col.Name] = c.Columns[i]
	}

	for i := range c.Rules {
		if err := c.prepareRule(&c.Rules[i]); err != nil {
			return fmt.Errorf("category %q: rule %q: %w", c.Name, c.Rules[i].Name, err)
		}
	}

	for _, d := range c.Derive {
		if d.Column == "" || len(d.Product) < 2 {
			return fmt.Errorf("category %q: derive needs a column and at least two factors", c.Name)
		}
	}

	r.categories = append(r.categories, c)
	r.byName[c.Name] = c

	return nil
}

func (c *Category) prepareRule(rule *Rule) error {
	if rule.Name == "" {
		rule.Name = string(rule.Kind) + "_" + rule.Column
	}
	if _, ok := c.columns[rule.Column]; !ok {
		return fmt.Errorf("unknown column %q", rule.Column)
	}

	switch rule.Kind {
	case RuleMin:
		if rule.Value == nil {
			return errors.New("min rule needs a value")
		}
		rule.min = decimal.NewFromFloat(*rule.Value)
	case RuleOneOf:
		if len(rule.Values) == 0 {
			return errors.New("one_of rule needs values")
		}
	case RuleProductEquals:
		if len(rule.Operands) < 2 {
			return errors.New("product_equals rule needs at least two operands")
		}
		for _, op := range rule.Operands {
			if _, ok := c.columns[op]; !ok {
				return fmt.Errorf("unknown operand column %q", op)
			}
		}
		rule.tolerance = DefaultTolerance
		if rule.Tolerance != nil {
			if *rule.Tolerance < 0 {
				return errors.New("tolerance must not be negative")
			}
			rule.tolerance = decimal.NewFromFloat(*rule.Tolerance)
		}
	default:
		return fmt.Errorf("unknown rule kind %q", rule.Kind)
	}

	return nil
}

// Categories returns declared categories in detection order.
func (r *Registry) Categories() []domain.Category {
	names := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		names = append(names, c.Name)
	}
	return names
}

func (r *Registry) Schema(name domain.Category) (*Category, bool) {
	c, ok := r.byName[name]
	return c, ok
}
