package fsmx

// Action is a state callback run on enter, execute or exit.
type Action func()

// Condition guards a link. A nil Condition is always satisfied.
type Condition func() bool

// State is a node of a Machine.
//
// A State handle stays valid until the state is removed or its machine is cleared or
// deleted; after that every machine operation rejects it with ErrUnknownReference.
type State struct {
	id      StateID
	machine *Machine
	slot    int

	onEnter   Action
	onExecute Action
	onExit    Action

	out []*Link // outgoing, insertion order
	in  []*Link // incoming, insertion order
}

// ID returns the state identifier.
func (s *State) ID() StateID { return s.id }

// Machine returns the owning machine, or nil once the state has been removed.
func (s *State) Machine() *Machine { return s.machine }

// Links returns a copy of the outgoing links in evaluation order.
func (s *State) Links() []*Link {
	return append([]*Link(nil), s.out...)
}

// Incoming returns a copy of the links that end in this state.
func (s *State) Incoming() []*Link {
	return append([]*Link(nil), s.in...)
}

func (s *State) enter() {
	if s.onEnter != nil {
		s.onEnter()
	}
}

func (s *State) execute() {
	if s.onExecute != nil {
		s.onExecute()
	}
}

func (s *State) exit() {
	if s.onExit != nil {
		s.onExit()
	}
}

// pickLink returns the first outgoing link whose condition holds.
// Conditions after the first satisfied one are not evaluated.
func (s *State) pickLink() *Link {
	for _, l := range s.out {
		if l.satisfied() {
			return l
		}
	}
	return nil
}

func (s *State) detach() {
	s.machine = nil
	s.slot = -1
	s.out = nil
	s.in = nil
}

// Link is a directed, guarded edge between two states of one Machine.
type Link struct {
	from      *State
	to        *State
	condition Condition
	machine   *Machine
	slot      int
}

// From returns the origin state.
func (l *Link) From() *State { return l.from }

// To returns the destination state.
func (l *Link) To() *State { return l.to }

// Machine returns the owning machine, or nil once the link has been removed.
func (l *Link) Machine() *Machine { return l.machine }

// Unconditional reports whether the link has no condition.
func (l *Link) Unconditional() bool { return l.condition == nil }

func (l *Link) satisfied() bool {
	if l.condition == nil {
		return true
	}
	return l.condition()
}

func (l *Link) detach() {
	l.machine = nil
	l.slot = -1
}

func removeLink(list []*Link, l *Link) []*Link {
	for i, x := range list {
		if x == l {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
