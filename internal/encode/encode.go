package encode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nao1215/titanicprep/internal/features"
	"github.com/nao1215/titanicprep/internal/model"
	"github.com/nao1215/titanicprep/internal/pipeline"
)

// ErrNotPrepared is returned when a dataset has not been through type
// coercion and feature engineering.
var ErrNotPrepared = errors.New("dataset is not prepared")

// Encoded column names that differ from their source column.
const (
	ColIsMale = "IsMale"
)

// Options configures the scale-variant layout.
type Options struct {
	// OneHotOrdered also expands the ordered Pclass and FamilySize columns.
	OneHotOrdered bool
}

// Tree encodes every categorical column as its level code.
// Missing values have code -1.
func Tree(ds *pipeline.Dataset) (dataframe.DataFrame, error) {
	if err := checkPrepared(ds); err != nil {
		return dataframe.DataFrame{}, err
	}

	df := dataframe.New(
		series.New(ds.PassengerIDs(), series.Int, model.ColPassengerID),
		codes(model.ColPclass, ds.Pclass),
		codes(ColIsMale, ds.Sex),
		series.New(ds.Fares(), series.Float, model.ColFare),
		codes(model.ColEmbarked, ds.Embarked),
		codes(features.ColCabinKnown, ds.Features.CabinKnown),
		codes(features.ColTitle, ds.Features.Title),
		codes(features.ColFamilySize, ds.Features.FamilySize),
		codes(features.ColIsMinor, ds.Features.IsMinor),
	)
	return df, df.Err
}

// ScaleVariant encodes unordered multi-level columns as indicators and the
// remaining categorical columns as codes.
func ScaleVariant(ds *pipeline.Dataset, opts Options) (dataframe.DataFrame, error) {
	if err := checkPrepared(ds); err != nil {
		return dataframe.DataFrame{}, err
	}

	cols := []series.Series{series.New(ds.PassengerIDs(), series.Int, model.ColPassengerID)}
	ordinal := func(c *model.Categorical) {
		if opts.OneHotOrdered {
			cols = append(cols, OneHot(c)...)
			return
		}
		cols = append(cols, codes(c.Name, c))
	}

	ordinal(ds.Pclass)
	cols = append(cols,
		codes(ColIsMale, ds.Sex),
		series.New(ds.Fares(), series.Float, model.ColFare),
	)
	cols = append(cols, OneHot(ds.Embarked)...)
	cols = append(cols, codes(features.ColCabinKnown, ds.Features.CabinKnown))
	cols = append(cols, OneHot(ds.Features.Title)...)
	ordinal(ds.Features.FamilySize)
	cols = append(cols, codes(features.ColIsMinor, ds.Features.IsMinor))

	df := dataframe.New(cols...)
	return df, df.Err
}

// OneHot returns one 0/1 column per level of c, named "<name>_<level>".
// A missing value has 0 in every indicator.
func OneHot(c *model.Categorical) []series.Series {
	out := make([]series.Series, 0, len(c.Levels))
	for code, level := range c.Levels {
		ind := make([]int, c.Len())
		for i := range c.Values {
			if c.Code(i) == code {
				ind[i] = 1
			}
		}
		out = append(out, series.New(ind, series.Int, c.Name+"_"+level))
	}
	return out
}

func codes(name string, c *model.Categorical) series.Series {
	return series.New(c.Codes(), series.Int, name)
}

func checkPrepared(ds *pipeline.Dataset) error {
	if ds.Pclass == nil || ds.Sex == nil || ds.Embarked == nil {
		return fmt.Errorf("%w: types not coerced", ErrNotPrepared)
	}
	if ds.Features == nil {
		return fmt.Errorf("%w: features not engineered", ErrNotPrepared)
	}
	return nil
}

// WriteCSV writes df to path, creating parent directories as needed.
func WriteCSV(path string, df dataframe.DataFrame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := df.WriteCSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
