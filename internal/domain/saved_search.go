package domain

import "time"

// SavedSearch is a persisted named filter-criteria set. Criteria is an
// opaque key-value map: it is stored and passed through verbatim, the
// only field this service ever rewrites is NotificationEnabled.
type SavedSearch struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"-"`
	Name                string            `json:"name"`
	Criteria            map[string]string `json:"criteria"`
	NotificationEnabled bool              `json:"notificationEnabled"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}
