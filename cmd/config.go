// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package cmd

import (
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the decode commands. Command line flags take
// precedence over the config file, which takes precedence over the
// defaults.
type Config struct {
	Variant string `yaml:"variant"`
	Format  string `yaml:"format"`
	Store   string `yaml:"store"`
}

func defaultConfig() Config {
	return Config{Variant: "linux", Format: "json"}
}

func loadConfigFile(fs afero.Fs, name string) (Config, error) {
	var config Config
	if name == "" {
		return config, nil
	}
	b, err := afero.ReadFile(fs, name)
	if err != nil {
		return config, errors.Wrap(err, "could not read config")
	}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return config, errors.Wrapf(err, "could not parse config %s", name)
	}
	return config, nil
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "yaml config file with variant, format and store")
	cmd.Flags().String("format", "", "output format (json or cbor, default json)")
	cmd.Flags().String("store", "", "insert the decoded elements into this store")
}

// loadConfig merges the changed flags, the config file and the defaults.
func loadConfig(cmd *cobra.Command, fs afero.Fs) (Config, error) {
	var config Config
	for name, target := range map[string]*string{
		"variant": &config.Variant,
		"format":  &config.Format,
		"store":   &config.Store,
	} {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Changed {
			*target = flag.Value.String()
		}
	}

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return config, err
	}
	fileConfig, err := loadConfigFile(fs, configFile)
	if err != nil {
		return config, err
	}
	if err := mergo.Merge(&config, fileConfig); err != nil {
		return config, err
	}
	if err := mergo.Merge(&config, defaultConfig()); err != nil {
		return config, err
	}

	switch config.Format {
	case formatJSON, formatCBOR:
	default:
		return config, errors.Errorf("unknown format %q", config.Format)
	}
	return config, nil
}
