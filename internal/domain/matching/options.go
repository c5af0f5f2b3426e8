package matching

// Default tuning values. They are starting points, not proven optima.
const (
	DefaultMinAnchorSize       = 2
	DefaultSimilarityThreshold = 0.5
	DefaultLabelSimilarity     = 0.6
	DefaultWorkers             = 1
)

// Options tunes the matcher.
type Options struct {
	// MinAnchorSize is the smallest subtree (in nodes) the anchor phase may pair.
	MinAnchorSize int
	// SimilarityThreshold is the minimum dice coefficient of matched
	// descendants for the containment phase to pair two containers.
	SimilarityThreshold float64
	// LabelSimilarity is the minimum label ratio for pairing two leaves of the
	// same type whose labels differ.
	LabelSimilarity float64
	// PairRoots pairs the two roots up front when their types are identical.
	// Without it, trees sharing no subtree of MinAnchorSize nodes stay
	// unmapped, except for isomorphic trees which Match always maps whole.
	PairRoots bool
	// Workers bounds the fan-out used to bucket subtrees in the anchor phase.
	Workers int
}

// DefaultOptions returns the default tuning.
func DefaultOptions() Options {
	return Options{
		MinAnchorSize:       DefaultMinAnchorSize,
		SimilarityThreshold: DefaultSimilarityThreshold,
		LabelSimilarity:     DefaultLabelSimilarity,
		PairRoots:           true,
		Workers:             DefaultWorkers,
	}
}

func (o Options) normalized() Options {
	if o.MinAnchorSize < 1 {
		o.MinAnchorSize = 1
	}

	if o.Workers < 1 {
		o.Workers = 1
	}

	return o
}
