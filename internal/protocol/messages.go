package protocol

// ClientCommand represents a command sent from a control client to the
// player daemon over the websocket.
type ClientCommand struct {
	Type     string   `json:"type"`
	Name     string   `json:"name,omitempty"`
	Args     []string `json:"args,omitempty"`
	Property string   `json:"property,omitempty"`
	Value    any      `json:"value,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}
