// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/shroud"
)

// msgpackCodec implements shroud.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() shroud.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack. Documents are emitted as a map in entry order.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	doc, ok := v.(*shroud.Document)
	if !ok {
		return msgpack.Marshal(v)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	pairs := doc.Pairs()
	if err := enc.EncodeMapLen(len(pairs)); err != nil {
		return nil, err
	}
	for _, e := range pairs {
		if err := enc.EncodeString(e.Key); err != nil {
			return nil, err
		}
		if err := enc.Encode(e.Value); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
