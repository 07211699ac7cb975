package categorizer

// RuleStrategy matches user-pinned keyword rules. Rules are tried in
// snapshot order; when several keywords match, which rule wins depends on
// that order and is not otherwise defined.
type RuleStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (s *RuleStrategy) Name() string {
	return StrategyRule
}

// Categorize returns the category and linked entity of the first rule whose
// keyword occurs in the counterparty or memo.
func (s *RuleStrategy) Categorize(snap Snapshot, tx Transaction) (Result, bool) {
	text := haystack(tx)
	for _, rule := range snap.Rules {
		if contains(text, rule.Keyword) {
			return Result{Category: rule.Category, LinkedEntity: rule.LinkedEntity}, true
		}
	}
	return Result{}, false
}
