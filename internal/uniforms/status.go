package uniforms

import (
	"time"

	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"github.com/kitstore/uniform-stock-backend/pkg/enums"
)

// StatusTransition is the resolved status state for one member item
// after applying a submitted update.
type StatusTransition struct {
	Status       enums.ItemStatus
	MissingCount int
	ReceivedDate *time.Time
}

// ResolveStatus runs the per-item status machine.
//
// missing_count is cumulative history: it increments on each entry
// into Missing and is never reset by leaving it. An explicit count
// from the caller overrides the computed value (administrative
// correction). received_date is set on the first entry into Available
// and sticky afterwards.
func ResolveStatus(prev *models.MemberUniformItem, submitted enums.ItemStatus, explicitMissing *int, now time.Time) StatusTransition {
	transition := StatusTransition{Status: submitted}

	prevStatus := enums.ItemStatus("")
	if prev != nil {
		transition.MissingCount = prev.MissingCount
		transition.ReceivedDate = prev.ReceivedDate
		prevStatus = prev.Status
	}

	if submitted == enums.ItemStatusMissing && prevStatus != enums.ItemStatusMissing {
		transition.MissingCount++
	}
	if explicitMissing != nil {
		transition.MissingCount = *explicitMissing
	}

	if submitted == enums.ItemStatusAvailable && transition.ReceivedDate == nil {
		received := now
		transition.ReceivedDate = &received
	}

	return transition
}
