// Package yaml provides a YAML codec implementation.
package yaml

import (
	"github.com/zoobzio/shroud"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements shroud.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() shroud.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML. Documents are emitted as a mapping in entry order.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	if doc, ok := v.(*shroud.Document); ok {
		node, err := documentNode(doc)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	}
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func documentNode(doc *shroud.Document) (*yaml.Node, error) {
	pairs := doc.Pairs()
	node := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, 2*len(pairs))}
	for _, e := range pairs {
		key := &yaml.Node{}
		if err := key.Encode(e.Key); err != nil {
			return nil, err
		}
		val := &yaml.Node{}
		if err := val.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
