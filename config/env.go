package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
)

// EnvPrefix is prepended to every field's env tag when looking up overrides,
// so the theme field is overridden by TINTBAR_THEME and so on.
const EnvPrefix = "TINTBAR"

// applyEnvOverrides overlays environment variables onto the structure's
// tagged fields. Variables that are unset or empty leave the field alone.
func applyEnvOverrides(structure interface{}) error {
	rv := reflect.ValueOf(structure)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: env overrides need a struct pointer, got %T", structure)
	}
	rv = rv.Elem()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)

		envTag, exists := fieldType.Tag.Lookup("env")
		if !exists {
			continue
		}

		envValue := os.Getenv(EnvPrefix + "_" + strings.ToUpper(envTag))
		if envValue == "" {
			continue
		}

		converted, err := cast.FromType(envValue, field.Type())
		if err != nil {
			return fmt.Errorf("config: cannot convert %s to %v in field '%s': %w", envValue, field.Type(), fieldType.Name, err)
		}
		field.Set(reflect.ValueOf(converted))
	}

	return nil
}
