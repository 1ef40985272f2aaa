package statutory

import "errors"

var (
	// ErrNoMatchingRate means no published entry covers the requested
	// wage/condition combination. This is a configuration error and must
	// never be defaulted to a zero contribution.
	ErrNoMatchingRate = errors.New("no matching statutory rate entry")

	// ErrAmbiguousRate means more than one entry of equal specificity
	// matched a lookup, which the dataset invariants forbid.
	ErrAmbiguousRate = errors.New("ambiguous statutory rate entries")

	ErrUnknownContributionKind = errors.New("unknown contribution kind")
	ErrInvalidDataset          = errors.New("invalid statutory dataset")
)
