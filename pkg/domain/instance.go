package domain

import "strings"

// Connection states of a WhatsApp instance, after normalization.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusConnecting   = "connecting"
)

// InstanceCounts mirrors the backend's per-instance usage counters.
type InstanceCounts struct {
	Message int `json:"Message" mapstructure:"Message"`
	Contact int `json:"Contact" mapstructure:"Contact"`
	Chat    int `json:"Chat" mapstructure:"Chat"`
}

// Instance is a WhatsApp connection managed by the Evolution API.
type Instance struct {
	ID               string         `json:"id" mapstructure:"id"`
	Name             string         `json:"name" mapstructure:"name"`
	ConnectionStatus string         `json:"connectionStatus" mapstructure:"connectionStatus"`
	Number           string         `json:"number" mapstructure:"number"`
	ProfilePicURL    string         `json:"profilePicUrl" mapstructure:"profilePicUrl"`
	ProfileName      string         `json:"profileName" mapstructure:"profileName"`
	Token            string         `json:"token" mapstructure:"token"`
	OwnerJID         string         `json:"ownerJid" mapstructure:"ownerJid"`
	Count            InstanceCounts `json:"_count" mapstructure:"_count"`
}

// NormalizeStatus maps the Evolution states "open"/"closed" to connected/disconnected.
func NormalizeStatus(status string) string {
	switch status {
	case "open":
		return StatusConnected
	case "closed":
		return StatusDisconnected
	default:
		return status
	}
}

// Connected reports whether the instance is connected.
func (i Instance) Connected() bool {
	return NormalizeStatus(i.ConnectionStatus) == StatusConnected
}

// InstanceFilter selects instances by name substring and status ("all", "connected", "disconnected").
type InstanceFilter struct {
	Query  string
	Status string
}

// Apply returns the instances matching the filter, preserving order.
func (f InstanceFilter) Apply(instances []Instance) []Instance {
	q := strings.ToLower(f.Query)
	out := make([]Instance, 0, len(instances))
	for _, in := range instances {
		if q != "" && !strings.Contains(strings.ToLower(in.Name), q) {
			continue
		}
		switch f.Status {
		case StatusConnected:
			if !in.Connected() {
				continue
			}
		case StatusDisconnected:
			if NormalizeStatus(in.ConnectionStatus) != StatusDisconnected {
				continue
			}
		}
		out = append(out, in)
	}
	return out
}

// NewInstance is the payload for creating an instance.
type NewInstance struct {
	Name   string `json:"nome"`
	Number string `json:"numero"`
}

// Credentials are the login form fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ConnectState is the response of a connect (QR) request.
type ConnectState struct {
	Status  string `json:"status,omitempty" mapstructure:"status"`
	Code    string `json:"code,omitempty" mapstructure:"code"`
	Base64  string `json:"base64,omitempty" mapstructure:"base64"`
	Pairing string `json:"pairingCode,omitempty" mapstructure:"pairingCode"`
}

// Terminal reports whether polling can stop.
func (c ConnectState) Terminal() bool {
	return NormalizeStatus(c.Status) == StatusConnected
}
