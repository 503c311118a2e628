package load

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a compact binary encoding of loaded schemas, used to
// persist the result of a load across processes.
type Snapshot struct {
	Schemas []*Schema `msgpack:"schemas"`
}

// EncodeSnapshot encodes the loaded schemas with msgpack.
func EncodeSnapshot(schemas ...*Schema) ([]byte, error) {
	return msgpack.Marshal(&Snapshot{Schemas: schemas})
}

// DecodeSnapshot decodes a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(buf []byte) ([]*Schema, error) {
	snap := &Snapshot{}
	if err := msgpack.Unmarshal(buf, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for _, s := range snap.Schemas {
		for _, f := range s.Fields {
			if err := f.defaults(); err != nil {
				return nil, err
			}
		}
	}
	return snap.Schemas, nil
}
