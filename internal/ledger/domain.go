// internal/ledger/domain.go
package ledger

import "fmt"

// Event is a scheduled space event and the resources it consumes.
type Event struct {
	Type      string   `json:"tipo"`
	Date      string   `json:"fecha"`
	Resources []string `json:"recursos"`
}

// Date is a calendar date as entered in the form.
type Date struct {
	Day   int
	Month int
	Year  int
}

// String renders the date as DD/MM/YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%d", d.Day, d.Month, d.Year)
}

// Accepted ranges for each date field. Days are not checked against the
// length of the month, so 31/02 is accepted.
const (
	MinDay   = 1
	MaxDay   = 31
	MinMonth = 1
	MaxMonth = 12
	MinYear  = 2000
	MaxYear  = 2100
)
