package ies

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/icza/ipf/binutil"
)

// ToBytes serializes f into a complete IES byte buffer (§4.8). Columns are
// written to the column table in f.Columns' original order; rows are
// written using the numeric-first, then-by-position sortColumns order.
func ToBytes(f *File) ([]byte, error) {
	sorted := sortColumns(f.Columns)

	var buf bytes.Buffer

	if err := binutil.WriteFixedString(&buf, f.Name, headerNameLen); err != nil {
		return nil, fmt.Errorf("ies: writing name: %w", err)
	}
	if err := binutil.WriteUint16(&buf, f.Version); err != nil {
		return nil, err
	}
	if err := writeZeros(&buf, 2); err != nil { // padding
		return nil, err
	}

	sizeFieldsOffset := buf.Len()
	if err := binutil.WriteUint32(&buf, 0); err != nil { // data_offset placeholder
		return nil, err
	}
	if err := binutil.WriteUint32(&buf, 0); err != nil { // resource_offset placeholder
		return nil, err
	}
	if err := binutil.WriteUint32(&buf, 0); err != nil { // file_size placeholder
		return nil, err
	}

	var useClassID byte
	if f.UseClassID {
		useClassID = 1
	}
	if err := buf.WriteByte(useClassID); err != nil {
		return nil, err
	}
	if err := writeZeros(&buf, 1); err != nil { // padding
		return nil, err
	}

	numberCount, stringCount := 0, 0
	for _, c := range f.Columns {
		if c.IsNumber() {
			numberCount++
		} else {
			stringCount++
		}
	}

	if err := binutil.WriteUint16(&buf, uint16(len(f.Rows))); err != nil {
		return nil, err
	}
	if err := binutil.WriteUint16(&buf, uint16(len(f.Columns))); err != nil {
		return nil, err
	}
	if err := binutil.WriteUint16(&buf, uint16(numberCount)); err != nil {
		return nil, err
	}
	if err := binutil.WriteUint16(&buf, uint16(stringCount)); err != nil {
		return nil, err
	}
	if err := writeZeros(&buf, 2); err != nil { // padding
		return nil, err
	}

	for _, c := range f.Columns {
		if err := writeColumn(&buf, c); err != nil {
			return nil, fmt.Errorf("ies: writing column %q: %w", c.Name, err)
		}
	}

	rowsStart := buf.Len()

	for _, row := range f.Rows {
		if err := writeInt32(&buf, row.ClassID); err != nil {
			return nil, fmt.Errorf("ies: writing class_id: %w", err)
		}
		if err := binutil.WriteXoredLPString(&buf, row.ClassName); err != nil {
			return nil, fmt.Errorf("ies: writing class_name: %w", err)
		}

		for _, col := range sorted {
			v, ok := row.Values[col.Name]
			if col.IsNumber() {
				if !ok {
					if err := writeFloat32(&buf, 0); err != nil {
						return nil, err
					}
					continue
				}
				f32, err := v.Float32()
				if err != nil {
					return nil, fmt.Errorf("ies: row %d column %q: %w", row.ClassID, col.Name, err)
				}
				if err := writeFloat32(&buf, f32); err != nil {
					return nil, err
				}
			} else {
				if !ok {
					if err := binutil.WriteXoredLPString(&buf, ""); err != nil {
						return nil, err
					}
					continue
				}
				s, err := v.Str()
				if err != nil {
					return nil, fmt.Errorf("ies: row %d column %q: %w", row.ClassID, col.Name, err)
				}
				if err := binutil.WriteXoredLPString(&buf, s); err != nil {
					return nil, err
				}
			}
		}

		for _, col := range sorted {
			if col.IsNumber() {
				continue
			}
			var b byte
			if row.UseScr[col.Name] {
				b = 1
			}
			if err := buf.WriteByte(b); err != nil {
				return nil, err
			}
		}
	}

	out := buf.Bytes()
	dataOffset := uint32(len(f.Columns)) * columnRecordLen
	resourceOffset := uint32(len(out) - rowsStart)
	fileSize := uint32(len(out))

	binary.LittleEndian.PutUint32(out[sizeFieldsOffset:], dataOffset)
	binary.LittleEndian.PutUint32(out[sizeFieldsOffset+4:], resourceOffset)
	binary.LittleEndian.PutUint32(out[sizeFieldsOffset+8:], fileSize)

	return out, nil
}

func writeZeros(buf *bytes.Buffer, n int) error {
	_, err := buf.Write(make([]byte, n))
	return err
}

func writeColumn(buf *bytes.Buffer, c Column) error {
	if err := binutil.WriteXoredFixedString(buf, c.Name, 64); err != nil {
		return err
	}
	if err := binutil.WriteXoredFixedString(buf, c.Name2, 64); err != nil {
		return err
	}
	if err := binutil.WriteUint16(buf, uint16(c.Type)); err != nil {
		return err
	}
	if err := binutil.WriteUint16(buf, uint16(c.Access)); err != nil {
		return err
	}
	if err := binutil.WriteUint16(buf, c.Sync); err != nil {
		return err
	}
	return binutil.WriteUint16(buf, c.Position)
}
