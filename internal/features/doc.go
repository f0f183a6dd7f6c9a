// Package features derives the categorical passenger features used by the
// encoders: CabinKnown, Title, FamilySize and IsMinor.
//
// Every derivation is a pure function of the passenger records. Engineer
// runs all four and returns, next to the columns, a model.FeatureSummary
// describing what was computed.
package features
