package ies

import (
	"encoding/binary"
	"io"
	"math"
)

func readInt32(r io.Reader, out *int32) error {
	var u uint32
	if err := binary.Read(r, binary.LittleEndian, &u); err != nil {
		return err
	}
	*out = int32(u)
	return nil
}

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, uint32(v))
}

func readFloat32(r io.Reader) (float32, error) {
	var u uint32
	if err := binary.Read(r, binary.LittleEndian, &u); err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func writeFloat32(w io.Writer, v float32) error {
	return binary.Write(w, binary.LittleEndian, math.Float32bits(v))
}
