package state

import (
	"fmt"
	"time"
)

// ActivityTimeLayout is how activity log timestamps are rendered.
const ActivityTimeLayout = "02/01/2006, 15:04:05"

// LogActivity appends an audit entry. at should already be in the session's
// display timezone.
func (s *State) LogActivity(at time.Time, action, details string) {
	s.ActivityLog = append(s.ActivityLog, fmt.Sprintf("[%s] %s: %s", at.Format(ActivityTimeLayout), action, details))
}
