package pipeline

import (
	"sort"
	"time"

	"github.com/cars24/connector-cli/internal/model"
)

// AssignRoundRobin distributes identities across the available
// associates. Assignment is deterministic for a given date: identities
// are ordered by (phone, name) and the rotation starts at an offset
// derived from the date, so re-runs on the same day agree.
func AssignRoundRobin(identities []model.Identity, associates []model.Associate, date time.Time) []model.Identity {
	out := make([]model.Identity, len(identities))
	copy(out, identities)
	if len(out) == 0 || len(associates) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Phone != out[j].Phone {
			return out[i].Phone < out[j].Phone
		}
		return out[i].CustomerName < out[j].CustomerName
	})

	n := len(associates)
	seed := date.Year()*10000 + int(date.Month())*100 + date.Day()
	offset := seed % n

	for i := range out {
		a := associates[(offset+i)%n]
		out[i].AssigneeName = a.Name
		out[i].AssigneeEmail = a.Email
	}
	return out
}
