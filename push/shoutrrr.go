package push

import (
	"errors"
	"strings"

	"github.com/containrrr/shoutrrr"
	"github.com/containrrr/shoutrrr/pkg/router"
	"github.com/containrrr/shoutrrr/pkg/types"
	"github.com/dvla-io/dvla/util"
)

// Shoutrrr implements the shoutrrr messaging aggregator
type Shoutrrr struct {
	log *util.Logger
	app *router.ServiceRouter
}

func init() {
	registry.Add("shoutrrr", NewShoutrrrFromConfig)
}

// NewShoutrrrFromConfig creates new Shoutrrr messenger
func NewShoutrrrFromConfig(other map[string]interface{}) (Messenger, error) {
	var cc struct {
		URI string
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	if cc.URI == "" {
		return nil, errors.New("missing uri")
	}

	app, err := shoutrrr.CreateSender(strings.Split(cc.URI, " ")...)
	if err != nil {
		return nil, err
	}

	m := &Shoutrrr{
		log: util.NewLogger("shoutrrr"),
		app: app,
	}

	return m, nil
}

// Send sends to all receivers
func (m *Shoutrrr) Send(title, msg string) {
	params := &types.Params{}
	if title != "" {
		params.SetTitle(title)
	}

	for _, err := range m.app.Send(msg, params) {
		if err != nil {
			m.log.ERROR.Printf("send: %v", err)
		}
	}
}
