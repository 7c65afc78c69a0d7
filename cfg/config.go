// Package cfg defines the VFS's own configuration surface: the handle
// quota, a base policy mask, logging settings, and the one contract the
// surrounding SFTP daemon actually needs to hand the VFS — a list of
// mount/inode definitions. It mirrors gcsfuse's cfg package shape
// (struct + yaml tags bound through pflag/viper) scaled down to these
// few knobs; the daemon's own JSON configuration (listen address, users,
// TOTP secrets) is out of scope and never modeled here.
package cfg

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oldphoenix/umsftpd/vfs/flags"
)

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	FilePath string `yaml:"file-path,omitempty" mapstructure:"log-file"`
	Severity string `yaml:"severity,omitempty" mapstructure:"log-severity"`
	Format   string `yaml:"format,omitempty" mapstructure:"log-format"`
}

// MountDefinition is one entry of the SFTP layer's inode-definition
// contract (spec.md §6): a virtual path, its optional host target, and
// the flag masks applied at that exact leaf.
type MountDefinition struct {
	VirtualPath string      `yaml:"virtual-path" mapstructure:"virtual-path"`
	TargetPath  string      `yaml:"target-path,omitempty" mapstructure:"target-path"`
	FlagsSet    flags.Flag  `yaml:"flags-set,omitempty" mapstructure:"flags-set"`
	FlagsReset  flags.Flag  `yaml:"flags-reset,omitempty" mapstructure:"flags-reset"`
}

// Settings is the VFS's full configuration surface.
type Settings struct {
	HandleQuota int               `yaml:"handle-quota,omitempty" mapstructure:"handle-quota"`
	BaseFlags   flags.Flag        `yaml:"base-flags,omitempty" mapstructure:"base-flags"`
	Logging     LoggingConfig     `yaml:"logging,omitempty" mapstructure:",squash"`
	Mounts      []MountDefinition `yaml:"mounts,omitempty" mapstructure:"mounts"`
}

// Default returns the settings a VFS runs with when the operator
// supplies no configuration file at all.
func Default() Settings {
	return Settings{
		HandleQuota: 10,
		Logging:     LoggingConfig{Severity: "INFO", Format: "text"},
	}
}

// BindFlags registers the demo CLI's persistent flags and wires them
// through viper, following gcsfuse's cfg.Config.BindFlags pattern.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.IntP("handle-quota", "q", 10, "maximum number of simultaneously open VFS handles")
	flagSet.StringP("log-severity", "", "INFO", "log severity: CRITICAL, ERROR, WARN, INFO, DEBUG, TRACE, OFF")
	flagSet.StringP("log-format", "", "text", "log format: text or json")
	flagSet.StringP("log-file", "", "", "path to a log file; logs to stderr when empty")
	flagSet.StringP("mount-config", "c", "", "path to a YAML mount-definition file")

	for _, name := range []string{"handle-quota", "log-severity", "log-format", "log-file", "mount-config"} {
		if err := viper.BindPFlag(name, flagSet.Lookup(name)); err != nil {
			return fmt.Errorf("cfg: bind flag %q: %w", name, err)
		}
	}
	return nil
}

// FromViper decodes the current viper state into a Settings, applying
// the flag-name-list decode hook so YAML like `base-flags: [READ_ONLY]`
// becomes a flags.Flag bitmask.
func FromViper() (Settings, error) {
	s := Default()
	if err := viper.Unmarshal(&s, viper.DecodeHook(flagsDecodeHook())); err != nil {
		return Settings{}, fmt.Errorf("cfg: unmarshal: %w", err)
	}
	return s, nil
}
