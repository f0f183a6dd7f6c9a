// Package encode lays out prepared passenger data as gota data frames for
// model training.
//
// Tree produces one integer code per categorical column, suitable for
// models indifferent to scale. ScaleVariant expands unordered multi-level
// columns into 0/1 indicator columns named "<Column>_<level>" and keeps
// ordinal and binary columns as codes. PassengerId is always the first
// column.
package encode
