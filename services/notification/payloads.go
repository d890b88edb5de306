package notification

import (
	"fmt"

	"trimly/models"
)

// NewRequestPayloads builds the fan-out pushes for a fresh request.
func NewRequestPayloads(req *models.ServiceRequest, barbers []models.Barber) []models.PushPayload {
	payloads := make([]models.PushPayload, 0, len(barbers))
	for _, b := range barbers {
		payloads = append(payloads, models.PushPayload{
			Topic: models.BarberTopic(b.ID),
			Title: "New request near you",
			Body:  fmt.Sprintf("A customer at %s is looking for a barber. Open the app to bid.", req.Address),
			Data: map[string]string{
				"type":      "new_request",
				"requestId": req.ID,
			},
		})
	}
	return payloads
}

// NewResponsePayload tells the customer a barber has bid on their request.
func NewResponsePayload(req *models.ServiceRequest, resp *models.BarberResponse) models.PushPayload {
	return models.PushPayload{
		Topic: models.CustomerTopic(req.CustomerID),
		Title: "You have a new bid",
		Body:  fmt.Sprintf("A barber offered %.2f, about %d min away.", resp.ProposedPrice, resp.ETAMinutes),
		Data: map[string]string{
			"type":       "new_response",
			"requestId":  req.ID,
			"responseId": resp.ID,
		},
	}
}

// OfferPayload tells the counterpart of an offer that it landed.
func OfferPayload(msg *models.NegotiationMessage, customerID string) models.PushPayload {
	topic := models.CustomerTopic(customerID)
	if msg.SenderRole == models.RoleCustomer {
		topic = models.BarberTopic(msg.BarberID)
	}
	return models.PushPayload{
		Topic: topic,
		Title: "New price proposal",
		Body:  fmt.Sprintf("The other side proposed %.2f. It expires soon.", msg.OfferAmount),
		Data: map[string]string{
			"type":      "offer",
			"requestId": msg.RequestID,
			"messageId": msg.ID,
		},
	}
}

// BookingCompletedPayload tells the customer the service was rendered.
func BookingCompletedPayload(booking *models.Booking) models.PushPayload {
	return models.PushPayload{
		Topic: models.CustomerTopic(booking.CustomerID),
		Title: "Service completed",
		Body:  "Your barber marked the service as completed.",
		Data: map[string]string{
			"type":      "booking_completed",
			"bookingId": booking.ID,
			"requestId": booking.RequestID,
		},
	}
}

// BookingConfirmedPayloads builds the confirmation pushes for both parties.
func BookingConfirmedPayloads(booking *models.Booking) []models.PushPayload {
	data := map[string]string{
		"type":      "booking_confirmed",
		"bookingId": booking.ID,
		"requestId": booking.RequestID,
	}
	return []models.PushPayload{
		{
			Topic: models.CustomerTopic(booking.CustomerID),
			Title: "Booking confirmed",
			Body:  fmt.Sprintf("Your barber is booked for %.2f.", booking.FinalPrice),
			Data:  data,
		},
		{
			Topic: models.BarberTopic(booking.BarberID),
			Title: "You got the job",
			Body:  fmt.Sprintf("Booking confirmed at %s for %.2f.", booking.Address, booking.FinalPrice),
			Data:  data,
		},
	}
}
