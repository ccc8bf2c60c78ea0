package push

import (
	"fmt"
	"strings"
)

type typeRegistry map[string]func(map[string]interface{}) (Messenger, error)

func (r typeRegistry) Add(name string, factory func(map[string]interface{}) (Messenger, error)) {
	if _, exists := r[name]; exists {
		panic(fmt.Sprintf("cannot register duplicate messenger type: %s", name))
	}
	r[name] = factory
}

func (r typeRegistry) Get(name string) (func(map[string]interface{}) (Messenger, error), error) {
	factory, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("invalid messenger type: %s", name)
	}
	return factory, nil
}

var registry = make(typeRegistry)

// NewMessengerFromConfig creates new messenger
func NewMessengerFromConfig(typ string, other map[string]interface{}) (Messenger, error) {
	factory, err := registry.Get(strings.ToLower(typ))
	if err != nil {
		return nil, err
	}

	v, err := factory(other)
	if err != nil {
		err = fmt.Errorf("cannot create messenger '%s': %w", typ, err)
	}

	return v, err
}
