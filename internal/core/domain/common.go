package domain

import "time"

// SystemActor is recorded in audit fields when no human initiated the change
// (scheduled ROI sweeps, startup catch-up).
const SystemActor = "system"

// AuditFields holds standard audit information for domain entities.
// CreatedBy / LastUpdatedBy hold the external id of the actor (admin chat id, user id or SystemActor).
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Touch stamps the last-updated fields.
func (a *AuditFields) Touch(actor string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = actor
}
