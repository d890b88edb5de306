package handlers

// HandlerBundle groups the handlers the route registrar wires up.
type HandlerBundle struct {
	Request     *RequestHandler
	Response    *ResponseHandler
	Negotiation *NegotiationHandler
	Booking     *BookingHandler
}
