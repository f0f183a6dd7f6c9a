package pipeline

import (
	"github.com/nao1215/titanicprep/internal/model"
)

// NASummary counts missing values per column, in passenger column order
// followed by the derived columns that have been computed.
func NASummary(ds *Dataset) []model.ColumnCount {
	counts := []model.ColumnCount{
		{Column: model.ColPassengerID},
		{Column: model.ColPclass},
		{Column: model.ColName},
		{Column: model.ColSex},
		{Column: model.ColAge},
		{Column: model.ColSibSp},
		{Column: model.ColParch},
		{Column: model.ColTicket},
		{Column: model.ColFare},
		{Column: model.ColCabin},
		{Column: model.ColEmbarked},
	}
	for _, p := range ds.Passengers {
		if p.Name == "" {
			counts[2].Count++
		}
		if p.Sex == "" {
			counts[3].Count++
		}
		if p.Age == nil {
			counts[4].Count++
		}
		if p.Ticket == "" {
			counts[7].Count++
		}
		if p.Fare == nil {
			counts[8].Count++
		}
		if p.Cabin == nil {
			counts[9].Count++
		}
		if p.Embarked == nil {
			counts[10].Count++
		}
	}

	if ds.Features != nil {
		for _, c := range ds.Features.Columns() {
			counts = append(counts, model.ColumnCount{Column: c.Name, Count: c.Missing()})
		}
	}
	return counts
}
