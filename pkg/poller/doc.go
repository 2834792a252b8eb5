// Package poller refreshes the QR code of a WhatsApp instance until it connects.
//
// It is the only recurring operation of the toolkit: one fetch per interval (5 s by default),
// ended by a terminal state, Stop or context cancellation.
package poller
