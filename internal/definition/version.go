package definition

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeVersion returns doc.Version when set, otherwise a short content hash of
// the document. Equal documents hash equally.
func ComputeVersion(doc *MachineConfig) string {
	if doc.Version != "" {
		return doc.Version
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "invalid"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
