package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/wrplume/plumesim/internal/plume"
)

// loadOverrides applies a TOML file of parameter overrides on top of the
// catalog baseline. Only keys present in the file change; unknown keys
// are an error so typos do not silently run the baseline.
func loadOverrides(path string, base plume.Params) (plume.Params, error) {
	meta, err := toml.DecodeFile(path, &base)
	if err != nil {
		return base, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return base, fmt.Errorf("unknown parameter %q", undecoded[0].String())
	}
	return base, nil
}
