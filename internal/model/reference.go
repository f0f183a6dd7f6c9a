package model

// ReferenceRecord is one scraped encyclopedia entry used for age lookup.
// Age is free text as published and may carry a unit suffix such as "m"
// for months.
type ReferenceRecord struct {
	// Name is the published passenger or crew name.
	Name string `json:"name"`

	// Age is the published age text.
	Age string `json:"age"`

	// SourceAge is the listing page the record was scraped from.
	// It is -1 when the record was loaded from a file that does not track it.
	SourceAge int `json:"source_age"`

	// Extra holds the other columns of the listing table.
	Extra map[string]string `json:"extra,omitempty"`
}

// ReferenceRecords converts a scraped table into reference records.
// nameCol and ageCol name the columns holding the lookup key and the age.
func ReferenceRecords(t *Table, nameCol, ageCol string) ([]ReferenceRecord, error) {
	idx, err := t.MustColumns(nameCol, ageCol)
	if err != nil {
		return nil, err
	}

	records := make([]ReferenceRecord, 0, t.Len())
	for _, row := range t.Rows {
		rec := ReferenceRecord{
			Name:      row[idx[0]],
			Age:       row[idx[1]],
			SourceAge: -1,
		}
		for j, h := range t.Header {
			if j == idx[0] || j == idx[1] || row[j] == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = row[j]
		}
		records = append(records, rec)
	}
	return records, nil
}
