package push

import "context"

// Message is one notification to deliver, independent of transport.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
	// CollapseTag groups notifications in the Android shade. Chat sends set
	// it to the room id so messages from one room collapse together.
	CollapseTag string
}

// Sender delivers notifications to devices. Implementations must not retry;
// the service layer treats every failure as final.
type Sender interface {
	// Send delivers msg to a single device token.
	Send(ctx context.Context, token string, msg Message) error
	// SendMulticast delivers msg to many device tokens in one call. The
	// platform's per-token partial failures are not surfaced.
	SendMulticast(ctx context.Context, tokens []string, msg Message) error
}
