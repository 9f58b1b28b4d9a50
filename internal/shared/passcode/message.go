// Package passcode renders the human readable text that carries a passcode.
package passcode

import (
	"strings"
	"text/template"
)

// DefaultMessage is used when no template is configured.
const DefaultMessage = "Your verification code is: {{.Code}}"

// Message renders a configured text/template with the fields of messageData.
type Message struct {
	tmpl *template.Template
}

type messageData struct {
	Code    string
	Channel string
}

// NewMessage parses text; blank text selects DefaultMessage.
func NewMessage(text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultMessage
	}

	tmpl, err := template.New("passcode").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}

	return &Message{tmpl: tmpl}, nil
}

func (m *Message) Render(code, channel string) (string, error) {
	var sb strings.Builder
	if err := m.tmpl.Execute(&sb, messageData{Code: code, Channel: channel}); err != nil {
		return "", err
	}

	return sb.String(), nil
}
