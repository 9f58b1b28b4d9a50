package entity

// Delivery is one rendered passcode message on its way to a contact.
type Delivery struct {
	EventID string
	Contact string
	Channel Channel
	Subject string
	Body    string
}
