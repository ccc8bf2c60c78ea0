package push

// Messenger implements message sending
type Messenger interface {
	Send(title, msg string)
}
