package main

import (
	"io"

	"github.com/comalice/fsmx/internal/cliconfig"
	"github.com/comalice/fsmx/internal/production"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSnapshotStore opens the persister named by a "kind:target" spec.
func openSnapshotStore(spec string) (production.Persister, io.Closer, error) {
	kind, target, err := cliconfig.ParseSnapshotStore(spec)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case "json":
		p, err := production.NewJSONPersister(target)
		return p, nopCloser{}, err
	case "yaml":
		p, err := production.NewYAMLPersister(target)
		return p, nopCloser{}, err
	default:
		p, err := production.OpenSQLite(target)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}
}
