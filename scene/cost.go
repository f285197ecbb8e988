package scene

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultCostKB is charged for any type tag the table does not know.
const DefaultCostKB = 10

var builtinCosts = map[string]int{
	"tree_pine":       12,
	"tree_oak":        15,
	"tree_birch":      13,
	"building_house":  30,
	"building_castle": 45,
	"spaceship":       45,
	"marker":          1,
}

// CostTable maps an entity type tag to a fixed memory cost in KB.
// A table never changes after construction.
type CostTable struct {
	costs     map[string]int
	defaultKB int
}

// NewCostTable copies costs into a new table. Unknown types cost defaultKB.
func NewCostTable(costs map[string]int, defaultKB int) *CostTable {
	t := &CostTable{
		costs:     make(map[string]int, len(costs)),
		defaultKB: defaultKB,
	}
	for typ, kb := range costs {
		t.costs[typ] = kb
	}
	return t
}

// DefaultCostTable returns the built-in workbench costs.
func DefaultCostTable() *CostTable {
	return BuiltinCostTable(DefaultCostKB)
}

// BuiltinCostTable returns the built-in costs with a different charge for
// unknown types.
func BuiltinCostTable(defaultKB int) *CostTable {
	return NewCostTable(builtinCosts, defaultKB)
}

// Cost returns the memory cost of typ. Unknown types fall back to the default
// cost rather than failing.
func (t *CostTable) Cost(typ string) int {
	if kb, ok := t.costs[typ]; ok {
		return kb
	}
	return t.defaultKB
}

// Known reports whether typ has an explicit entry.
func (t *CostTable) Known(typ string) bool {
	_, ok := t.costs[typ]
	return ok
}

// DefaultKB is the fallback cost.
func (t *CostTable) DefaultKB() int { return t.defaultKB }

// Types returns the known type tags in sorted order.
func (t *CostTable) Types() []string {
	types := make([]string, 0, len(t.costs))
	for typ := range t.costs {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// costFile is the on-disk layout of a cost table.
type costFile struct {
	DefaultKB *int           `yaml:"default_kb"`
	Types     map[string]int `yaml:"types"`
}

// LoadCostTable reads a YAML cost table. When the file omits default_kb the
// fallback argument is used.
func LoadCostTable(path string, fallbackKB int) (*CostTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cost table: %w", err)
	}
	return ParseCostTable(raw, fallbackKB)
}

// ParseCostTable decodes a YAML cost table from memory.
func ParseCostTable(raw []byte, fallbackKB int) (*CostTable, error) {
	var f costFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse cost table: %w", err)
	}
	defaultKB := fallbackKB
	if f.DefaultKB != nil {
		defaultKB = *f.DefaultKB
	}
	if defaultKB < 0 {
		return nil, fmt.Errorf("parse cost table: negative default_kb %d", defaultKB)
	}
	for typ, kb := range f.Types {
		if kb < 0 {
			return nil, fmt.Errorf("parse cost table: negative cost %d for %q", kb, typ)
		}
	}
	return NewCostTable(f.Types, defaultKB), nil
}
