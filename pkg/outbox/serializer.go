package outbox

import "encoding/json"

// Serializer turns a domain event into the opaque payload stored on the
// outbox record and shipped to the broker.
type Serializer interface {
	Serialize(event Event) ([]byte, error)
}

type jsonSerializer struct{}

func newSerializer() Serializer {
	return jsonSerializer{}
}

// Serialize encodes the full event envelope: consumers deduplicate on
// eventId and switch on eventType before decoding the data field.
func (jsonSerializer) Serialize(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, &SerializationError{EventType: event.Type, Err: err}
	}
	return payload, nil
}
