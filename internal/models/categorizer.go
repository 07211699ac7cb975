package models

// ClassificationRule maps a keyword found in a transaction's counterparty or
// memo text to a category. Keywords are unique across the rule store.
type ClassificationRule struct {
	Keyword      string
	Category     string
	LinkedEntity *EntityRef
}
