package application

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// applyUpdate copies the allow-listed keys of a partial-update payload onto
// the existing document. Absent keys leave the current value in place, so
// a decoded false or empty string is an explicit client value.
func applyUpdate(payload map[string]interface{}, allowed map[string]bool, target interface{}) error {
	filtered := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		if allowed[key] {
			filtered[key] = value
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			stringToObjectIDHookFunc(),
		),
		Result: target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(filtered)
}

func stringToObjectIDHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(primitive.ObjectID{}) {
			return data, nil
		}
		return primitive.ObjectIDFromHex(data.(string))
	}
}
