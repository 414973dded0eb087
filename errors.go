package fsmx

import "errors"

var (
	// ErrAllocation reports that backing storage could not be obtained: a fixed
	// capacity is exhausted, or growth would pass the slot limit.
	ErrAllocation = errors.New("fsmx: allocation failed")

	// ErrDuplicateID reports an id already used in the machine: a state id on
	// AddState, or an instance id on Restore.
	ErrDuplicateID = errors.New("fsmx: duplicate state id")

	// ErrUnknownReference reports a state, link or instance that does not belong
	// to the machine it was handed to.
	ErrUnknownReference = errors.New("fsmx: unknown reference")

	// ErrDanglingLinks reports a RemoveState without link removal on a state that
	// still has incident links.
	ErrDanglingLinks = errors.New("fsmx: state has incident links")

	// ErrNoInitialState reports an update of an unbound instance whose machine has
	// no initial state. The instance stays unbound and may succeed later.
	ErrNoInitialState = errors.New("fsmx: no initial state")

	// ErrDuplicateMachine reports a registry that already holds a machine with the
	// same id.
	ErrDuplicateMachine = errors.New("fsmx: duplicate machine id")

	ErrInvalidMachine  = errors.New("fsmx: machine deleted")
	ErrInvalidInstance = errors.New("fsmx: instance deleted")
	ErrModuleClosed    = errors.New("fsmx: module closed")
)
