package models

import "time"

// Barber is a mobile barber available for matching. Location is kept fresh
// by the barber app and indexed with a 2dsphere index for nearby queries.
type Barber struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Phone         string    `bson:"phone,omitempty" json:"phone,omitempty"`
	FCMToken      string    `bson:"fcm_token,omitempty" json:"-"`
	Location      GeoPoint  `bson:"location" json:"location"`
	ServiceIDs    []string  `bson:"service_ids" json:"serviceIds"`
	Rating        float64   `bson:"rating" json:"rating"`
	CompletedJobs int       `bson:"completed_jobs" json:"completedJobs"`
	Active        bool      `bson:"active" json:"active"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// Offers reports whether the barber covers every requested service.
func (b *Barber) Offers(serviceIDs []string) bool {
	have := make(map[string]bool, len(b.ServiceIDs))
	for _, id := range b.ServiceIDs {
		have[id] = true
	}
	for _, id := range serviceIDs {
		if !have[id] {
			return false
		}
	}
	return true
}

// Customer is the thin customer record the engine needs for notifications.
type Customer struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	FCMToken string `bson:"fcm_token,omitempty" json:"-"`
}
