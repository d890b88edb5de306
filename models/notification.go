package models

// PushPayload is the unit of work for the async push queue. Pushes address
// per-actor FCM topics so the engine never stores device tokens itself.
type PushPayload struct {
	Topic string            `json:"topic"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// CustomerTopic returns the FCM topic a customer's devices subscribe to.
func CustomerTopic(customerID string) string {
	return "customer-" + customerID
}

// BarberTopic returns the FCM topic a barber's devices subscribe to.
func BarberTopic(barberID string) string {
	return "barber-" + barberID
}
