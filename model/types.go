package model

import (
	"fmt"
	"math"
)

// ID is the identifier assigned to a vector when it is added to an index.
// IDs equal insertion order and are never reused.
type ID int64

// NoID marks an empty slot in a fixed-width result row.
const NoID ID = -1

// Valid reports whether id refers to a vector.
func (id ID) Valid() bool {
	return id >= 0
}

// Candidate is a potential match found during search.
type Candidate struct {
	ID       ID
	Distance float32
}

// EmptyCandidate is the padding value for result rows with fewer than k hits.
var EmptyCandidate = Candidate{ID: NoID, Distance: float32(math.Inf(1))}

// Less orders candidates by ascending distance, then ascending ID.
func (c Candidate) Less(o Candidate) bool {
	if c.Distance != o.Distance {
		return c.Distance < o.Distance
	}
	return c.ID < o.ID
}

// String returns a string representation of the candidate.
func (c Candidate) String() string {
	return fmt.Sprintf("Cand(%d:%g)", c.ID, c.Distance)
}
