package fsmx

import (
	"fmt"
	"math"
	"strings"
)

// StateID is a caller-chosen state identifier, unique within one machine.
type StateID uint16

// MaxStates is the number of distinct StateID values.
const MaxStates = math.MaxUint16 + 1

// MaxLinks bounds link storage growth.
const MaxLinks = math.MaxInt32

// StoragePolicy selects the memory region a machine is accounted against.
// It is an opaque tag: the engine records it and reports it, nothing more.
type StoragePolicy uint8

const (
	StorageMain StoragePolicy = iota
	StorageVideo
	StorageAudio
	StorageTemp
)

func (p StoragePolicy) String() string {
	switch p {
	case StorageMain:
		return "main"
	case StorageVideo:
		return "video"
	case StorageAudio:
		return "audio"
	case StorageTemp:
		return "temp"
	default:
		return fmt.Sprintf("storage(%d)", uint8(p))
	}
}

// MarshalText encodes the policy by name for definition documents.
func (p StoragePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts a policy name.
func (p *StoragePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "main":
		*p = StorageMain
	case "video":
		*p = StorageVideo
	case "audio":
		*p = StorageAudio
	case "temp":
		*p = StorageTemp
	default:
		return fmt.Errorf("unknown storage policy %q", text)
	}
	return nil
}

// Config holds construction parameters for a Machine.
//
// StateCapacity and LinkCapacity size the first storage block. With Expandable unset
// they are hard ceilings and AddState/AddLink fail once reached; with Expandable set
// storage grows one block at a time. InstanceHint sizes instance storage, which
// always grows.
type Config struct {
	StateCapacity int           `json:"stateCapacity" yaml:"stateCapacity" toml:"state_capacity"`
	LinkCapacity  int           `json:"linkCapacity" yaml:"linkCapacity" toml:"link_capacity"`
	InstanceHint  int           `json:"instanceHint" yaml:"instanceHint" toml:"instance_hint"`
	Expandable    bool          `json:"expandable" yaml:"expandable" toml:"expandable"`
	Storage       StoragePolicy `json:"storage" yaml:"storage" toml:"storage"`
}

// DefaultConfig returns an expandable configuration with small initial blocks.
func DefaultConfig() Config {
	return Config{
		StateCapacity: 16,
		LinkCapacity:  32,
		InstanceHint:  8,
		Expandable:    true,
		Storage:       StorageMain,
	}
}

// Validate rejects capacities that could never hold an element.
func (c Config) Validate() error {
	if c.StateCapacity < 0 || c.LinkCapacity < 0 || c.InstanceHint < 0 {
		return fmt.Errorf("%w: negative capacity", ErrAllocation)
	}
	if c.StateCapacity > MaxStates {
		return fmt.Errorf("%w: state capacity %d exceeds %d", ErrAllocation, c.StateCapacity, MaxStates)
	}
	if !c.Expandable && (c.StateCapacity == 0 || c.LinkCapacity == 0) {
		return fmt.Errorf("%w: fixed machine needs non-zero state and link capacity", ErrAllocation)
	}
	return nil
}
