package testutil

// FixedRunID generates the same run id every time.
//
// Journals written with a FixedRunID are byte-for-byte reproducible, which
// keeps golden output stable. Only one run per journal can use it because
// run ids are primary keys.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a new fixed run id generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run id.
//
// Implements store.IDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
