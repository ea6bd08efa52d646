// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package util

import (
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// DefaultFormat is the output format when none is specified.
const DefaultFormat = FormatJSON

// Config holds defaults for the flags. It is read from a yaml file, and any
// flag that was passed on the command line wins over it.
type Config struct {
	Seed   *int64 `yaml:"seed"`
	Format string `yaml:"format"`
	Pretty *bool  `yaml:"pretty"`
	Limit  *int   `yaml:"limit"`
	Debug  *bool  `yaml:"debug"`
}

// LoadConfig reads a config file. Unknown keys are an error.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read config")
	}
	config := &Config{}
	if err := yaml.UnmarshalStrict(b, config); err != nil {
		return nil, errwrap.Wrapf(err, "can't parse config %s", path)
	}
	return config, nil
}

// Merge returns the settings that result from the flags on top of the config.
// The config may be nil.
func (obj *Config) Merge(template TemplateArgs, output OutputArgs) Settings {
	s := Settings{
		Format: DefaultFormat,
	}
	if obj != nil {
		if obj.Seed != nil {
			s.Seed = *obj.Seed
		}
		if obj.Format != "" {
			s.Format = obj.Format
		}
		if obj.Pretty != nil {
			s.Pretty = *obj.Pretty
		}
		if obj.Limit != nil {
			s.Limit = *obj.Limit
		}
		if obj.Debug != nil {
			s.Debug = *obj.Debug
		}
	}
	if template.Seed != nil {
		s.Seed = *template.Seed
	}
	if output.Format != "" {
		s.Format = output.Format
	}
	if output.Pretty != nil {
		s.Pretty = *output.Pretty
	}
	return s
}

// Settings are the final values of the common flags.
type Settings struct {
	Seed   int64
	Format string
	Pretty bool
	Limit  int // zero is unlimited
	Debug  bool
}
