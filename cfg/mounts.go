package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oldphoenix/umsftpd/vfs"
)

// LoadMountFile reads a YAML document of mount definitions from path,
// the concrete realization of spec.md §6's "the SFTP layer supplies
// inode definitions... during session setup" contract. This is
// intentionally narrow: it is not a general daemon-configuration loader,
// just enough to drive the demo CLI and tests from a file instead of
// hardcoded calls to AddInode.
func LoadMountFile(path string) ([]MountDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cfg: read mount file %q: %w", path, err)
	}
	var defs []MountDefinition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("cfg: parse mount file %q: %w", path, err)
	}
	return defs, nil
}

// ApplyMounts feeds every definition into v via AddInode, then calls
// FreezeInodes. Session setup calls this once, before serving any
// request.
func ApplyMounts(v *vfs.VFS, defs []MountDefinition) error {
	for _, d := range defs {
		if err := v.AddInode(d.VirtualPath, d.TargetPath, d.FlagsSet, d.FlagsReset); err != nil {
			return fmt.Errorf("cfg: add inode %q: %w", d.VirtualPath, err)
		}
	}
	return v.FreezeInodes()
}
