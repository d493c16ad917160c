package manifest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/amazon-ion/ion-go/ion"
)

// errVersion is returned when persisted data was written with a different
// schema version.
var errVersion = errors.New("schema version mismatch")

// document is the persisted wire form: single Ion struct carrying version tag
// and the payload.
type document[T any] struct {
	Version int `ion:"version"`
	Payload T   `ion:"payload"`
}

func encode[T any](version int, v T) ([]byte, error) {
	data, err := ion.MarshalBinary(document[T]{Version: version, Payload: v})
	if err != nil {
		return nil, fmt.Errorf("unable to encode: %w", err)
	}
	return data, nil
}

func decode[T any](version int, data []byte) (T, error) {
	var (
		doc  document[T]
		zero T
	)
	dec := ion.NewDecoder(ion.NewReader(bytes.NewReader(data)))
	if err := dec.DecodeTo(&doc); err != nil {
		return zero, fmt.Errorf("unable to decode: %w", err)
	}
	if doc.Version != version {
		return zero, fmt.Errorf("%w: stored %d, expected %d", errVersion, doc.Version, version)
	}
	return doc.Payload, nil
}
