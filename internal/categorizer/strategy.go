package categorizer

// Strategy is one step of the classification chain.
type Strategy interface {
	// Categorize returns a result and true when the strategy matches tx.
	// Implementations must not panic on empty input.
	Categorize(snap Snapshot, tx Transaction) (Result, bool)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
