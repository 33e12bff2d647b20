package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnvOverrides sets every field tagged `env:"NAME"` whose variable is
// present, descending into nested structs.
func applyEnvOverrides(target interface{}, lookup lookupFunc) error {
	root := reflect.ValueOf(target)
	if root.Kind() != reflect.Ptr || root.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("env overrides need a struct pointer, got %T", target)
	}
	return overrideStruct(root.Elem(), lookup)
}

func overrideStruct(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, meta := v.Field(i), t.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := overrideStruct(field, lookup); err != nil {
				return err
			}
			continue
		}

		name := meta.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		if err := assignEnvValue(field, raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func assignEnvValue(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid duration %q", raw)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list of %s", field.Type().Elem())
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// splitList splits a comma separated value, dropping blank items.
func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func envOverrides(target interface{}) error {
	return applyEnvOverrides(target, os.LookupEnv)
}
