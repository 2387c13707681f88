package mediator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a raw envelope is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// ErrUnknownType is returned when an envelope names a type the decoder does
// not know.
var ErrUnknownType = errors.New("unknown envelope type")

// Decoder turns raw JSON envelopes into messages, for embedders that feed the
// dispatcher from a queue consumer or webhook in the same process. It reads
// the envelope's type field, maps it to a registered type identity, and
// carries the payload field as raw JSON for the handler to unmarshal.
//
// The decoder is a convenience at the edge; Invoke and Publish never depend
// on it.
//
//	dec := mediator.NewDecoder()
//	dec.Register(UserCreated)
//
//	msg, err := dec.Decode(raw)
//	if err != nil {
//	    return err
//	}
//	_, err = d.Publish(ctx, msg)
type Decoder struct {
	typeField    string
	payloadField string
	types        map[string]*Type
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithTypeField overrides the envelope path holding the type name.
// The default is "type". Paths use gjson syntax, so nested fields like
// "detail.kind" work.
func WithTypeField(path string) DecoderOption {
	return func(d *Decoder) {
		d.typeField = path
	}
}

// WithPayloadField overrides the envelope path holding the payload.
// The default is "payload".
func WithPayloadField(path string) DecoderOption {
	return func(d *Decoder) {
		d.payloadField = path
	}
}

// NewDecoder creates a Decoder with the given options.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		typeField:    "type",
		payloadField: "payload",
		types:        make(map[string]*Type),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register makes t decodable under its own key. Do not call Register after
// calling Decode.
func (d *Decoder) Register(t *Type) {
	d.types[t.key] = t
}

// RegisterAs makes t decodable under an external name that differs from its
// key, e.g. an upstream event name.
func (d *Decoder) RegisterAs(name string, t *Type) {
	d.types[name] = t
}

// Decode parses a raw envelope into a Message. The message's payload is the
// envelope's payload field as json.RawMessage; an envelope without a payload
// field yields a nil payload.
func (d *Decoder) Decode(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return Message{}, ErrInvalidJSON
	}

	tv := gjson.GetBytes(raw, d.typeField)
	if !tv.Exists() || tv.Type != gjson.String {
		return Message{}, fmt.Errorf("envelope missing type field %q", d.typeField)
	}

	t, ok := d.types[tv.String()]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownType, tv.String())
	}

	var payload json.RawMessage
	if pv := gjson.GetBytes(raw, d.payloadField); pv.Exists() {
		payload = json.RawMessage(pv.Raw)
	}
	return NewMessage(t, payload), nil
}
