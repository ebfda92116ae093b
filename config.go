// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"flag"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/units"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/brotbox/bbe-arena/fault"
)

// Config is the configuration surface of the allocators and containers.
type Config struct {
	// StackSize is the number of bytes a StackAllocator reserves.
	StackSize ByteSize `yaml:"stack_size"`

	// SequenceCapacity is the capacity list.Sequence reserves up front.
	// Zero defers allocation to the first append.
	SequenceCapacity int `yaml:"sequence_capacity"`
}

// RegisterFlags registers the configuration flags with their defaults.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.StackSize = DefaultStackSize
	f.Var(&cfg.StackSize, "arena.stack-size", "Bytes reserved by a stack allocator. Accepts plain byte counts or Base2 units such as 4KiB.")
	f.IntVar(&cfg.SequenceCapacity, "arena.sequence-capacity", 0, "Initial capacity of sequence containers. 0 allocates on first append.")
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	if cfg.StackSize == 0 {
		return errors.Wrap(fault.ErrIllegalArgument, "stack size must be positive")
	}
	if cfg.StackSize > math.MaxInt {
		return errors.Wrapf(fault.ErrIllegalArgument, "stack size (%d) exceeds the addressable maximum %d", uint64(cfg.StackSize), math.MaxInt)
	}
	if cfg.SequenceCapacity < 0 {
		return errors.Wrapf(fault.ErrIllegalArgument, "sequence capacity (%d) must not be negative", cfg.SequenceCapacity)
	}
	return nil
}

// ParseConfig reads a YAML document on top of the flag defaults and validates
// the result.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	cfg.RegisterFlags(flag.NewFlagSet("defaults", flag.ContinueOnError))
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing arena config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ByteSize is a size in bytes that parses either a plain integer or a Base2
// unit string such as "1KiB" or "16MiB".
type ByteSize uint64

// ParseByteSize parses s as a ByteSize.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ByteSize(n), nil
	}
	b, err := units.ParseBase2Bytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid byte size %q", s)
	}
	if b < 0 {
		return 0, errors.Wrapf(fault.ErrIllegalArgument, "negative byte size %q", s)
	}
	return ByteSize(b), nil
}

// String implements flag.Value.
func (b ByteSize) String() string {
	return units.Base2Bytes(b).String()
}

// Set implements flag.Value.
func (b *ByteSize) Set(s string) error {
	v, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return b.Set(s)
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}
