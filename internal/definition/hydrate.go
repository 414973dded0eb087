package definition

import (
	"fmt"

	"github.com/comalice/fsmx"
)

// Resolver turns document text into callbacks. Condition may return a nil
// Condition for text that means "always".
type Resolver interface {
	Action(name string) (fsmx.Action, error)
	Condition(text string) (fsmx.Condition, error)
}

// Compile validates doc and resolves every action and condition into a ready
// fsmx.MachineBuilder. States are declared in document order.
func Compile(doc *MachineConfig, r Resolver, opts ...fsmx.Option) (*fsmx.MachineBuilder, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	b := fsmx.NewMachineBuilder(doc.Capacity, opts...)
	for _, s := range doc.States {
		if s.ID != nil {
			b.Reserve(s.Name, *s.ID)
		}
	}

	for i, s := range doc.States {
		field := fmt.Sprintf("states[%d]", i)
		enter, err := resolveActions(r, field+".enter", s.Enter)
		if err != nil {
			return nil, err
		}
		execute, err := resolveActions(r, field+".execute", s.Execute)
		if err != nil {
			return nil, err
		}
		exit, err := resolveActions(r, field+".exit", s.Exit)
		if err != nil {
			return nil, err
		}
		sb := b.State(s.Name).OnEnter(enter).OnExecute(execute).OnExit(exit)
		for j, l := range s.Links {
			var cond fsmx.Condition
			if l.When != "" {
				if cond, err = r.Condition(l.When); err != nil {
					return nil, fieldError(fmt.Sprintf("%s.links[%d].when", field, j), err.Error())
				}
			}
			sb.To(l.To, cond)
		}
	}
	b.Initial(doc.InitialState())
	return b, nil
}

// Hydrate compiles doc and builds the machine. The returned table maps engine
// state ids back to document names.
func Hydrate(doc *MachineConfig, r Resolver, opts ...fsmx.Option) (*fsmx.Machine, map[fsmx.StateID]string, error) {
	b, err := Compile(doc, r, opts...)
	if err != nil {
		return nil, nil, err
	}
	m, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build %q: %w", doc.Name, err)
	}
	return m, b.Names(), nil
}

// HydrateIn is Hydrate with the machine registered in mod.
func HydrateIn(mod *fsmx.Module, doc *MachineConfig, r Resolver) (*fsmx.Machine, map[fsmx.StateID]string, error) {
	b, err := Compile(doc, r)
	if err != nil {
		return nil, nil, err
	}
	m, err := b.BuildIn(mod)
	if err != nil {
		return nil, nil, fmt.Errorf("build %q: %w", doc.Name, err)
	}
	return m, b.Names(), nil
}

func resolveActions(r Resolver, field string, names []string) (fsmx.Action, error) {
	var actions []fsmx.Action
	for i, name := range names {
		a, err := r.Action(name)
		if err != nil {
			return nil, fieldError(fmt.Sprintf("%s[%d]", field, i), err.Error())
		}
		actions = append(actions, a)
	}
	return sequence(actions), nil
}

func sequence(actions []fsmx.Action) fsmx.Action {
	switch len(actions) {
	case 0:
		return nil
	case 1:
		return actions[0]
	}
	return func() {
		for _, a := range actions {
			if a != nil {
				a()
			}
		}
	}
}
