package visitor

//go:generate go run github.com/dmarkham/enumer -type Outcome -trimprefix Outcome -transform lower -text -output outcome.gen.go

// Outcome is the result of resolving a submitted name
type Outcome int

const (
	// OutcomeNew means the name was stored by this submission
	OutcomeNew Outcome = iota
	// OutcomeKnown means the name was already stored
	OutcomeKnown
)

// Known reports whether the visitor was already stored
func (o Outcome) Known() bool {
	return o == OutcomeKnown
}
