package impute

import (
	"fmt"

	"github.com/nao1215/titanicprep/internal/model"
)

// Impute returns a copy of t where every empty Age cell holds the age of
// the best matching reference record. Non-empty ages are never changed.
// dataset labels the audit entries, e.g. "train".
func (m *Matcher) Impute(t *model.Table, dataset string) (*model.Table, model.ImputationSummary, error) {
	summary := model.ImputationSummary{Dataset: dataset, Rows: t.Len()}

	idx, err := t.MustColumns(model.ColName, model.ColAge)
	if err != nil {
		return nil, summary, fmt.Errorf("%s: %w", dataset, err)
	}
	nameIdx, ageIdx := idx[0], idx[1]
	idIdx, hasID := t.ColumnIndex(model.ColPassengerID)

	out := t.Clone()
	for _, row := range out.Rows {
		if row[ageIdx] != "" {
			continue
		}

		res := m.BestMatch(row[nameIdx])
		row[ageIdx] = res.Age

		match := model.Match{
			Dataset:     dataset,
			Name:        row[nameIdx],
			MatchedName: res.Record.Name,
			Score:       res.Score,
			RawAge:      res.Record.Age,
			Age:         res.Age,
			Tie:         res.Tie,
		}
		if hasID {
			match.PassengerID = row[idIdx]
		}
		summary.Matches = append(summary.Matches, match)
		summary.Filled++

		if res.Tie {
			summary.Ties++
			m.logger.Warn("ambiguous name match",
				"dataset", dataset,
				"passenger_id", match.PassengerID,
				"name", match.Name,
				"matched", match.MatchedName,
				"score", match.Score,
			)
		}
		if res.Score < m.minScoreWarning {
			summary.LowScore++
			m.logger.Warn("low similarity name match",
				"dataset", dataset,
				"passenger_id", match.PassengerID,
				"name", match.Name,
				"matched", match.MatchedName,
				"score", match.Score,
			)
		}
		m.logger.Debug("age imputed",
			"dataset", dataset,
			"passenger_id", match.PassengerID,
			"age", match.Age,
			"score", match.Score,
		)
	}

	m.logger.Info("imputation completed",
		"dataset", dataset,
		"rows", summary.Rows,
		"filled", summary.Filled,
		"ties", summary.Ties,
		"low_score", summary.LowScore,
	)
	return out, summary, nil
}
