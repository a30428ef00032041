package model

import "time"

// QueueSync records one successful fetch of a service desk's queues.
// SnapshotKey points at the archived listing in object storage.
type QueueSync struct {
	ID            string    `json:"id"`
	ServiceDeskID string    `json:"service_desk_id"`
	SnapshotKey   string    `json:"snapshot_key"`
	QueueCount    int       `json:"queue_count"`
	SyncedAt      time.Time `json:"synced_at"`
}
