package cfg

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/oldphoenix/umsftpd/vfs/flags"
)

// flagsDecodeHook converts a YAML list of flag names (e.g.
// ["READ_ONLY", "FILTER_HIDDEN"]) into a flags.Flag bitmask, the way
// gcsfuse's own decode hook converts a log-severity string or an octal
// literal into its typed field. A single flag name (bare string) is also
// accepted for convenience.
func flagsDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(flags.Flag(0)) {
			return data, nil
		}

		var names []string
		switch from.Kind() {
		case reflect.Slice:
			raw, ok := data.([]interface{})
			if !ok {
				return data, nil
			}
			for _, r := range raw {
				s, ok := r.(string)
				if !ok {
					return nil, fmt.Errorf("cfg: flag entry %v is not a string", r)
				}
				names = append(names, s)
			}
		case reflect.String:
			names = []string{data.(string)}
		default:
			// Already numeric (e.g. decoded from JSON as a plain int) —
			// let mapstructure's default numeric conversion handle it.
			return data, nil
		}

		var result flags.Flag
		for _, name := range names {
			f, ok := flags.Parse(name)
			if !ok {
				return nil, fmt.Errorf("cfg: unrecognized flag name %q", name)
			}
			result |= f
		}
		return result, nil
	}
}
