package quantum

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Payload size of numeric responses.
const payloadSize = 4

func checkPayload(b []byte) error {
	if len(b) < payloadSize {
		return fmt.Errorf("%w - invalid payload size %d - expected %d", ErrDecode, len(b), payloadSize)
	}
	return nil
}

func parseFloat32(b []byte) (float32, error) {
	if err := checkPayload(b); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func parseUint32(b []byte) (uint32, error) {
	if err := checkPayload(b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func appendFloat32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}
