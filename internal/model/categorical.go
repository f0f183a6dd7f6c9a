package model

import (
	"fmt"
	"slices"
)

// Categorical is a column of category labels with an explicit level set.
// The empty string is the missing value and has no level.
type Categorical struct {
	// Name is the column name.
	Name string `json:"name"`

	// Levels lists the categories. For ordered columns the slice order is
	// the category order; codes are indexes into this slice.
	Levels []string `json:"levels"`

	// Ordered reports whether the levels carry a meaningful order.
	Ordered bool `json:"ordered"`

	// Values holds one label per row.
	Values []string `json:"values"`
}

// NewCategorical builds a column over fixed levels.
// A non-empty value outside the level set is an error.
func NewCategorical(name string, values, levels []string, ordered bool) (*Categorical, error) {
	for i, v := range values {
		if v != "" && !slices.Contains(levels, v) {
			return nil, fmt.Errorf("column %s row %d: value %q is not one of %v", name, i+1, v, levels)
		}
	}
	return &Categorical{
		Name:    name,
		Levels:  slices.Clone(levels),
		Ordered: ordered,
		Values:  slices.Clone(values),
	}, nil
}

// InferCategorical builds an unordered column whose levels are the sorted
// distinct non-missing values.
func InferCategorical(name string, values []string) *Categorical {
	return &Categorical{
		Name:   name,
		Levels: SortedLevels(values),
		Values: slices.Clone(values),
	}
}

// SortedLevels returns the sorted distinct non-empty values.
func SortedLevels(values []string) []string {
	levels := make([]string, 0)
	for _, v := range values {
		if v != "" && !slices.Contains(levels, v) {
			levels = append(levels, v)
		}
	}
	slices.Sort(levels)
	return levels
}

// Len returns the number of rows.
func (c *Categorical) Len() int {
	return len(c.Values)
}

// Code returns the level index of row i, or -1 when the value is missing.
func (c *Categorical) Code(i int) int {
	return slices.Index(c.Levels, c.Values[i])
}

// Codes returns the level index of every row, -1 for missing values.
func (c *Categorical) Codes() []int {
	codes := make([]int, len(c.Values))
	for i := range c.Values {
		codes[i] = c.Code(i)
	}
	return codes
}

// Counts returns the number of rows per level.
func (c *Categorical) Counts() map[string]int {
	counts := make(map[string]int, len(c.Levels))
	for _, l := range c.Levels {
		counts[l] = 0
	}
	for _, v := range c.Values {
		if v != "" {
			counts[v]++
		}
	}
	return counts
}

// Missing returns the number of rows without a value.
func (c *Categorical) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v == "" {
			n++
		}
	}
	return n
}

// Slice returns the rows in [from, to) as a new column with the same levels.
func (c *Categorical) Slice(from, to int) *Categorical {
	return &Categorical{
		Name:    c.Name,
		Levels:  slices.Clone(c.Levels),
		Ordered: c.Ordered,
		Values:  slices.Clone(c.Values[from:to]),
	}
}
