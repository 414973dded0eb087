package definition

import "github.com/comalice/fsmx"

// LabelSnapshot returns a copy of snap with each bound instance's StateName set
// from names, the table returned by Hydrate.
func LabelSnapshot(snap fsmx.MachineSnapshot, names map[fsmx.StateID]string) fsmx.MachineSnapshot {
	out := snap
	out.Instances = make([]fsmx.InstanceSnapshot, len(snap.Instances))
	for i, is := range snap.Instances {
		if is.Bound {
			is.StateName = names[is.State]
		}
		out.Instances[i] = is
	}
	return out
}

// RemapSnapshot returns a copy of snap whose state ids follow names, the table of
// the machine about to restore it. Ids are looked up by StateName, so a definition
// that reorders or inserts states still restores instances onto the same named
// state. Instances whose state name is gone restore unbound. Entries without a
// name keep their id.
func RemapSnapshot(snap fsmx.MachineSnapshot, names map[fsmx.StateID]string) fsmx.MachineSnapshot {
	ids := make(map[string]fsmx.StateID, len(names))
	for id, name := range names {
		ids[name] = id
	}
	out := snap
	out.Instances = make([]fsmx.InstanceSnapshot, len(snap.Instances))
	for i, is := range snap.Instances {
		if is.Bound && is.StateName != "" {
			if id, ok := ids[is.StateName]; ok {
				is.State = id
			} else {
				is.Bound, is.State = false, 0
			}
		}
		out.Instances[i] = is
	}
	return out
}
