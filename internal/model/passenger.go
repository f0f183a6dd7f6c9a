package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Passenger dataset column names.
const (
	ColPassengerID = "PassengerId"
	ColSurvived    = "Survived"
	ColPclass      = "Pclass"
	ColName        = "Name"
	ColSex         = "Sex"
	ColAge         = "Age"
	ColSibSp       = "SibSp"
	ColParch       = "Parch"
	ColTicket      = "Ticket"
	ColFare        = "Fare"
	ColCabin       = "Cabin"
	ColEmbarked    = "Embarked"
)

// RequiredPassengerColumns are the columns every passenger file must carry.
// Survived and Ticket are optional: the test split has no label.
var RequiredPassengerColumns = []string{
	ColPassengerID, ColPclass, ColName, ColSex, ColAge,
	ColSibSp, ColParch, ColFare, ColCabin, ColEmbarked,
}

// Passenger is one row of the passenger dataset.
// Missing values are nil.
type Passenger struct {
	PassengerID int      `json:"passenger_id"`
	Survived    *int     `json:"survived,omitempty"`
	Pclass      int      `json:"pclass"`
	Name        string   `json:"name"`
	Sex         string   `json:"sex"`
	Age         *float64 `json:"age,omitempty"`
	SibSp       int      `json:"sibsp"`
	Parch       int      `json:"parch"`
	Ticket      string   `json:"ticket,omitempty"`
	Fare        *float64 `json:"fare,omitempty"`
	Cabin       *string  `json:"cabin,omitempty"`
	Embarked    *string  `json:"embarked,omitempty"`
}

// FamilyCount returns the number of relatives travelling with the passenger.
func (p Passenger) FamilyCount() int {
	return p.SibSp + p.Parch
}

// ParsePassengers converts a table into typed passenger records.
func ParsePassengers(t *Table) ([]Passenger, error) {
	idx, err := t.MustColumns(RequiredPassengerColumns...)
	if err != nil {
		return nil, err
	}
	survivedIdx, hasSurvived := t.ColumnIndex(ColSurvived)
	ticketIdx, hasTicket := t.ColumnIndex(ColTicket)

	passengers := make([]Passenger, 0, t.Len())
	for i, row := range t.Rows {
		p, err := parsePassenger(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if hasSurvived && strings.TrimSpace(row[survivedIdx]) != "" {
			v, err := strconv.Atoi(strings.TrimSpace(row[survivedIdx]))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q: %w", i+1, ColSurvived, row[survivedIdx], err)
			}
			p.Survived = &v
		}
		if hasTicket {
			p.Ticket = row[ticketIdx]
		}
		passengers = append(passengers, p)
	}
	return passengers, nil
}

// parsePassenger reads the required columns, in RequiredPassengerColumns order.
func parsePassenger(row []string, idx []int) (Passenger, error) {
	var p Passenger
	var err error

	if p.PassengerID, err = parseInt(ColPassengerID, row[idx[0]]); err != nil {
		return p, err
	}
	if p.Pclass, err = parseInt(ColPclass, row[idx[1]]); err != nil {
		return p, err
	}
	p.Name = row[idx[2]]
	p.Sex = row[idx[3]]
	if p.Age, err = parseOptionalFloat(ColAge, row[idx[4]]); err != nil {
		return p, err
	}
	if p.SibSp, err = parseInt(ColSibSp, row[idx[5]]); err != nil {
		return p, err
	}
	if p.Parch, err = parseInt(ColParch, row[idx[6]]); err != nil {
		return p, err
	}
	if p.Fare, err = parseOptionalFloat(ColFare, row[idx[7]]); err != nil {
		return p, err
	}
	p.Cabin = optionalString(row[idx[8]])
	p.Embarked = optionalString(row[idx[9]])
	return p, nil
}

func parseInt(col, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", col, s, err)
	}
	return v, nil
}

func parseOptionalFloat(col, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", col, s, err)
	}
	return &v, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
