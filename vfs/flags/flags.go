// Package flags defines the VFS's per-subtree policy bitmask.
package flags

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flag is a bitmask of policies attached to an inode and accumulated
// root-to-leaf during lookup.
type Flag uint8

const (
	ReadOnly Flag = 1 << iota
	FilterAll
	FilterHidden
	DisallowCreateFile
	DisallowCreateDir
	DisallowUnlink
	AllowSymlinks
)

var names = []struct {
	flag Flag
	name string
}{
	{ReadOnly, "READ_ONLY"},
	{FilterAll, "FILTER_ALL"},
	{FilterHidden, "FILTER_HIDDEN"},
	{DisallowCreateFile, "DISALLOW_CREATE_FILE"},
	{DisallowCreateDir, "DISALLOW_CREATE_DIR"},
	{DisallowUnlink, "DISALLOW_UNLINK"},
	{AllowSymlinks, "ALLOW_SYMLINKS"},
}

// String renders the set bits as a "|"-joined list of flag names, for
// logging and trace attributes.
func (f Flag) String() string {
	if f == 0 {
		return "NONE"
	}
	var parts []string
	for _, n := range names {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether all bits of want are set in f.
func (f Flag) Has(want Flag) bool {
	return f&want == want
}

// Parse converts a flag name to its bit, for config decoding. The second
// return value is false for an unrecognized name.
func Parse(name string) (Flag, bool) {
	for _, n := range names {
		if n.name == name {
			return n.flag, true
		}
	}
	return 0, false
}

// UnmarshalYAML accepts either a YAML list of flag names (["READ_ONLY",
// "FILTER_HIDDEN"]) or a bare flag name, so mount-definition files read
// naturally without a separate decode-hook pass.
func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	var list []string
	if err := value.Decode(&list); err == nil {
		var result Flag
		for _, name := range list {
			bit, ok := Parse(name)
			if !ok {
				return fmt.Errorf("flags: unrecognized flag name %q", name)
			}
			result |= bit
		}
		*f = result
		return nil
	}

	var single string
	if err := value.Decode(&single); err != nil {
		return err
	}
	bit, ok := Parse(single)
	if !ok {
		return fmt.Errorf("flags: unrecognized flag name %q", single)
	}
	*f = bit
	return nil
}
