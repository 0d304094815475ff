package models

// Event kinds as delivered by the chat transport.
const (
	EventText         = "text"
	EventImage        = "image"
	EventKindLocation = "location"
)

// EventLocation is a native location share.
type EventLocation struct {
	Lat   float64
	Lon   float64
	Label string
}

// InboundEvent is one message from a reporter, normalized away from the
// transport's own update format. DeliveryID identifies the transport
// delivery so exact redeliveries can be dropped.
type InboundEvent struct {
	ReporterID string
	DeliveryID string
	Kind       string
	Text       string
	ImageRef   string
	Location   *EventLocation
}
