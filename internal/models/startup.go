// internal/models/startup.go
package models

import "time"

// Startup owns catalog records; Name is the lookup key used when routing orders.
type Startup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   Contact   `json:"contact"`
	CreatedAt time.Time `json:"createdAt"`
}
