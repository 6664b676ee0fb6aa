package types

// Event is the flattened form of a typed ledger event, suitable for logs and
// JSON output.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
