package models

import "time"

// MessageType classifies an entry in a request's negotiation log.
type MessageType string

const (
	MessageText         MessageType = "text"
	MessageOffer        MessageType = "offer"
	MessageCounterOffer MessageType = "counter_offer"
	MessageSystem       MessageType = "system"
	MessageImage        MessageType = "image"
)

// OfferStatus tracks an offer-kind message until it is resolved.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCountered OfferStatus = "countered"
	OfferExpired   OfferStatus = "expired"
)

// NegotiationMessage is an ordered, append-only entry in a request's chat
// log. BarberID names the (request, barber) negotiation pair regardless of
// which side sent the message. Offer history is never mutated in place: a
// new offer supersedes the prior pending one by marking it countered.
type NegotiationMessage struct {
	ID             string      `bson:"id" json:"id"`
	RequestID      string      `bson:"request_id" json:"requestId"`
	BarberID       string      `bson:"barber_id" json:"barberId"`
	SenderID       string      `bson:"sender_id" json:"senderId"`
	SenderRole     string      `bson:"sender_role" json:"senderRole"`
	Type           MessageType `bson:"type" json:"type"`
	Content        string      `bson:"content,omitempty" json:"content,omitempty"`
	OfferAmount    float64     `bson:"offer_amount,omitempty" json:"offerAmount,omitempty"`
	OfferStatus    OfferStatus `bson:"offer_status,omitempty" json:"offerStatus,omitempty"`
	OfferExpiresAt *time.Time  `bson:"offer_expires_at,omitempty" json:"offerExpiresAt,omitempty"`
	CreatedAt      time.Time   `bson:"created_at" json:"createdAt"`
}

// IsOffer reports whether the message carries an actionable price proposal.
func (m *NegotiationMessage) IsOffer() bool {
	return m.Type == MessageOffer || m.Type == MessageCounterOffer
}

// OfferExpiredAt reports whether a pending offer has lapsed at the given instant.
func (m *NegotiationMessage) OfferExpiredAt(now time.Time) bool {
	return m.OfferExpiresAt != nil && now.After(*m.OfferExpiresAt)
}

// PostMessageInput is the payload for appending to a negotiation log.
type PostMessageInput struct {
	RequestID   string      `json:"requestId" binding:"required"`
	BarberID    string      `json:"barberId"` // pair key; inferred from sender when the sender is the barber
	SenderID    string      `json:"-"`
	SenderRole  string      `json:"-"`
	Type        MessageType `json:"type" binding:"required"`
	Content     string      `json:"content"`
	OfferAmount float64     `json:"offerAmount"`
}

// OfferDecision is a counterpart's verdict on a pending offer.
type OfferDecision string

const (
	DecisionAccept OfferDecision = "accept"
	DecisionReject OfferDecision = "reject"
)
