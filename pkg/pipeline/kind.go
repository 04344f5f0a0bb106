package pipeline

// Kind is the processing role of a block factory.
type Kind string

const (
	// KindSource blocks start a branch; they accept no inputs
	KindSource Kind = "source"
	// KindTransform blocks consume and re-emit data
	KindTransform Kind = "transform"
	// KindProduct blocks derive a forecast product
	KindProduct Kind = "product"
	// KindSink blocks terminate a branch and have no output
	KindSink Kind = "sink"
)

// Known reports whether k is one of the four kinds the engine understands.
// Catalogues may carry other kinds; those are tolerated but never wired.
func (k Kind) Known() bool {
	switch k {
	case KindSource, KindTransform, KindProduct, KindSink:
		return true
	default:
		return false
	}
}

// HasOutput reports whether blocks of this kind produce data that another
// block can consume.
func (k Kind) HasOutput() bool {
	switch k {
	case KindSource, KindTransform, KindProduct:
		return true
	default:
		return false
	}
}

// CanConsume reports whether a block of kind k may take the output of a
// block of kind upstream as one of its inputs.
//
// The relation is a preorder, not a hierarchy: a source feeds every kind but
// another source, transforms and products feed transforms, products and sinks,
// and a sink feeds nothing.
func (k Kind) CanConsume(upstream Kind) bool {
	if !upstream.HasOutput() {
		return false
	}
	switch k {
	case KindTransform, KindProduct, KindSink:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
