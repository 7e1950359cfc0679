package generator

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decodeOptions decodes a merged option map into a typed option struct.
// Decoding is weakly typed so values arriving from YAML, struct tags, and Go
// literals ("6", 6, 6.0) land in the same fields.
func decodeOptions(cfg Config, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(cfg)); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}
