package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/matzehuels/imagestitch/pkg/errors"
)

// applyConfig merges a TOML config file into o.
//
// The file named by --config is required to exist; otherwise ./imagestitch.toml
// is read when present. Keys mirror the long flag names. Flags set on the
// command line are re-applied after decoding so they win over the file.
func applyConfig(fs *pflag.FlagSet, o *stitchOpts) error {
	path, required := o.config, o.config != ""
	if !required {
		path = configFileName
	}
	if _, err := os.Stat(path); err != nil {
		if required {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "config file")
		}
		return nil
	}

	// Snapshot explicit flags before the file overwrites their fields.
	explicit := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	md, err := toml.DecodeFile(path, o)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		printWarning(os.Stderr, "%s: unknown keys %v", path, undecoded)
	}

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "--%s", name)
		}
	}
	return nil
}
