package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
)

// ErrSnapshotNotFound is returned by Load when no snapshot is stored under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Persister stores machine snapshots under a key.
type Persister interface {
	Save(ctx context.Context, snapshot fsmx.MachineSnapshot) error
	Load(ctx context.Context, key string) (fsmx.MachineSnapshot, error)
}

// SnapshotKey is the key a snapshot is stored under: its name when set, otherwise
// the machine id. Names survive process restarts; machine ids do not.
func SnapshotKey(snapshot fsmx.MachineSnapshot) string {
	if snapshot.Name != "" {
		return snapshot.Name
	}
	return snapshot.MachineID.String()
}

// fileCodec is the encoding half of a file persister.
type fileCodec struct {
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

// FilePersister writes one file per key into a directory.
type FilePersister struct {
	dir   string
	codec fileCodec
}

// NewJSONPersister creates a JSON FilePersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*FilePersister, error) {
	return newFilePersister(dir, fileCodec{
		ext: ".json",
		marshal: func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		},
		unmarshal: json.Unmarshal,
	})
}

// NewYAMLPersister creates a YAML FilePersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*FilePersister, error) {
	return newFilePersister(dir, fileCodec{
		ext:       ".yaml",
		marshal:   yaml.Marshal,
		unmarshal: yaml.Unmarshal,
	})
}

func newFilePersister(dir string, codec fileCodec) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FilePersister{dir: dir, codec: codec}, nil
}

// Path returns the file a key is stored in.
func (p *FilePersister) Path(key string) string {
	return filepath.Join(p.dir, key+p.codec.ext)
}

func (p *FilePersister) Save(ctx context.Context, snapshot fsmx.MachineSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := p.codec.marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fn := p.Path(SnapshotKey(snapshot))
	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fn); err != nil {
		return fmt.Errorf("rename %s: %w", fn, err)
	}
	return nil
}

func (p *FilePersister) Load(ctx context.Context, key string) (fsmx.MachineSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return fsmx.MachineSnapshot{}, err
	}
	fn := p.Path(key)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fsmx.MachineSnapshot{}, fmt.Errorf("%q: %w", key, ErrSnapshotNotFound)
		}
		return fsmx.MachineSnapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var snapshot fsmx.MachineSnapshot
	if err := p.codec.unmarshal(data, &snapshot); err != nil {
		return fsmx.MachineSnapshot{}, fmt.Errorf("unmarshal %s: %w", fn, err)
	}
	return snapshot, nil
}
