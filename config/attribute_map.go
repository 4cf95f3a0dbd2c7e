package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a free-form section of the config file, decoded into a native config struct on load.
type AttributeMap map[string]interface{}

// Decode fills dst from the attributes using dst's json tags.
func (am AttributeMap) Decode(dst interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: dst})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]interface{}(am))
}

func decodeSection(name string, am AttributeMap, dst interface{}) error {
	if err := am.Decode(dst); err != nil {
		return errors.Wrapf(err, "failed to decode %q section", name)
	}
	return nil
}
