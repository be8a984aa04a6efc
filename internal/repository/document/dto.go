package document

import (
	"strings"

	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
)

// DefaultPrefix namespaces every record key.
const DefaultPrefix = "crudex:"

func (r *Repo) recordKey(collection, id string) string {
	return r.prefix + collection + ":" + id
}

// collectionPattern matches all record keys of a collection. Collection names
// are validated upstream and never contain glob metacharacters.
func (r *Repo) collectionPattern(collection string) string {
	return r.prefix + collection + ":*"
}

// recordKeys drops duplicate scan entries and keys that are not
// <prefix><collection>:<id> with a valid id, such as other services' keys
// nested under the same pattern.
func (r *Repo) recordKeys(collection string, scanned []string) []string {
	head := r.prefix + collection + ":"
	seen := make(map[string]struct{}, len(scanned))
	keys := make([]string, 0, len(scanned))
	for _, k := range scanned {
		id, ok := strings.CutPrefix(k, head)
		if !ok || domrec.ValidateID(id) != nil {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// decodeStored parses a JSON.GET reply. Without a path the reply is the root
// object; with "$" it is a one-element array around it.
func decodeStored(raw []byte) (domrec.Record, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	return domrec.Decode([]byte(trimmed))
}
