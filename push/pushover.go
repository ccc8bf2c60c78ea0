package push

import (
	"errors"

	"github.com/dvla-io/dvla/util"
	"github.com/gregdel/pushover"
)

// Pushover implements the pushover messenger
type Pushover struct {
	log        *util.Logger
	app        *pushover.Pushover
	recipients []string
}

func init() {
	registry.Add("pushover", NewPushoverFromConfig)
}

// NewPushoverFromConfig creates new pushover messenger
func NewPushoverFromConfig(other map[string]interface{}) (Messenger, error) {
	var cc struct {
		App        string
		Recipients []string
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	if cc.App == "" {
		return nil, errors.New("pushover: missing app name")
	}

	m := &Pushover{
		log:        util.NewLogger("pushover"),
		app:        pushover.New(cc.App),
		recipients: cc.Recipients,
	}

	m.log.Redact(cc.App)
	m.log.Redact(cc.Recipients...)

	return m, nil
}

// Send sends to all receivers
func (m *Pushover) Send(title, msg string) {
	message := pushover.NewMessageWithTitle(msg, title)

	for _, id := range m.recipients {
		go func(id string) {
			m.log.DEBUG.Printf("sending to %s", id)

			recipient := pushover.NewRecipient(id)
			if _, err := m.app.SendMessage(message, recipient); err != nil {
				m.log.ERROR.Print(err)
			}
		}(id)
	}
}
