package ies

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/icza/ipf/binutil"
)

const (
	headerNameLen   = 128
	columnRecordLen = 136 // name 64 + name2 64 + type 2 + access 2 + sync 2 + position 2
)

// Parse reads a complete IES table from data (§4.7).
func Parse(data []byte) (*File, error) {
	r := bytes.NewReader(data)

	f := &File{}

	name, err := binutil.ReadFixedString(r, headerNameLen)
	if err != nil {
		return nil, fmt.Errorf("%w: reading header name: %v", ErrInvalidFormat, err)
	}
	f.Name = name

	version, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading version: %v", ErrInvalidFormat, err)
	}
	f.Version = version

	if _, err := r.Seek(2, io.SeekCurrent); err != nil { // padding
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	dataOffset, err := binutil.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading data_offset: %v", ErrInvalidFormat, err)
	}
	resourceOffset, err := binutil.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading resource_offset: %v", ErrInvalidFormat, err)
	}
	if _, err := binutil.ReadUint32(r); err != nil { // file_size, unused on read
		return nil, fmt.Errorf("%w: reading file_size: %v", ErrInvalidFormat, err)
	}

	var useClassIDByte [1]byte
	if _, err := io.ReadFull(r, useClassIDByte[:]); err != nil {
		return nil, fmt.Errorf("%w: reading use_class_id: %v", ErrInvalidFormat, err)
	}
	f.UseClassID = useClassIDByte[0] != 0

	if _, err := r.Seek(1, io.SeekCurrent); err != nil { // padding
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	rowCount, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading row_count: %v", ErrInvalidFormat, err)
	}
	columnCount, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading column_count: %v", ErrInvalidFormat, err)
	}
	numberColumnCount, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading number_column_count: %v", ErrInvalidFormat, err)
	}
	stringColumnCount, err := binutil.ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading string_column_count: %v", ErrInvalidFormat, err)
	}
	if _, err := r.Seek(2, io.SeekCurrent); err != nil { // padding
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if numberColumnCount+stringColumnCount != columnCount {
		return nil, fmt.Errorf("%w: number_column_count(%d) + string_column_count(%d) != column_count(%d)",
			ErrInvalidFormat, numberColumnCount, stringColumnCount, columnCount)
	}

	fileEnd := int64(len(data))
	columnsStart := fileEnd - int64(resourceOffset) - int64(dataOffset)
	rowsStart := fileEnd - int64(resourceOffset)
	if columnsStart < 0 || rowsStart < columnsStart || rowsStart > fileEnd {
		return nil, fmt.Errorf("%w: column/row region offsets out of range", ErrInvalidFormat)
	}
	if int64(dataOffset) != int64(columnCount)*columnRecordLen {
		return nil, fmt.Errorf("%w: data_offset(%d) does not match column_count(%d) * %d",
			ErrInvalidFormat, dataOffset, columnCount, columnRecordLen)
	}

	if _, err := r.Seek(columnsStart, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to column table: %v", ErrInvalidFormat, err)
	}

	columns := make([]Column, columnCount)
	seenNames := make(map[string]int, columnCount)
	for i := range columns {
		c, err := readColumn(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading column %d: %v", ErrInvalidFormat, i, err)
		}
		c.Name = dedupName(seenNames, c.Name)
		columns[i] = c
	}
	f.Columns = columns

	sortedColumns := sortColumns(columns)

	if _, err := r.Seek(rowsStart, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to row region: %v", ErrInvalidFormat, err)
	}

	rows := make([]Row, rowCount)
	for i := range rows {
		row, err := readRow(r, sortedColumns, int(stringColumnCount))
		if err != nil {
			return nil, fmt.Errorf("%w: reading row %d: %v", ErrInvalidFormat, i, err)
		}
		rows[i] = row
	}
	f.Rows = rows

	return f, nil
}

// dedupName appends _N suffixes (N starting at 1) until name is unique
// among names already seen, matching the read-order dedup rule of §4.7.
func dedupName(seen map[string]int, name string) string {
	if _, ok := seen[name]; !ok {
		seen[name] = 0
		return name
	}
	for {
		seen[name]++
		candidate := fmt.Sprintf("%s_%d", name, seen[name])
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 0
			return candidate
		}
	}
}

func readColumn(r io.Reader) (Column, error) {
	name, err := binutil.ReadXoredFixedString(r, 64)
	if err != nil {
		return Column{}, err
	}
	name2, err := binutil.ReadXoredFixedString(r, 64)
	if err != nil {
		return Column{}, err
	}
	typ, err := binutil.ReadUint16(r)
	if err != nil {
		return Column{}, err
	}
	access, err := binutil.ReadUint16(r)
	if err != nil {
		return Column{}, err
	}
	sync, err := binutil.ReadUint16(r)
	if err != nil {
		return Column{}, err
	}
	position, err := binutil.ReadUint16(r)
	if err != nil {
		return Column{}, err
	}
	return Column{
		Name:     name,
		Name2:    name2,
		Type:     ColumnType(typ),
		Access:   AccessType(access),
		Sync:     sync,
		Position: position,
	}, nil
}

func readRow(r io.Reader, sortedColumns []Column, stringColumnCount int) (Row, error) {
	var classID int32
	if err := readInt32(r, &classID); err != nil {
		return Row{}, fmt.Errorf("reading class_id: %w", err)
	}
	className, err := binutil.ReadXoredLPString(r)
	if err != nil {
		return Row{}, fmt.Errorf("reading class_name: %w", err)
	}

	values := make(map[string]Value, len(sortedColumns))
	for _, col := range sortedColumns {
		if col.IsNumber() {
			f, err := readFloat32(r)
			if err != nil {
				return Row{}, fmt.Errorf("reading numeric column %q: %w", col.Name, err)
			}
			values[col.Name] = NumberValue(f)
		} else {
			s, err := binutil.ReadXoredLPString(r)
			if err != nil {
				return Row{}, fmt.Errorf("reading string column %q: %w", col.Name, err)
			}
			values[col.Name] = StringValue(s)
		}
	}

	// use_scr region: one byte per string column, discarded on load (§4.7,
	// §9 open question).
	if stringColumnCount > 0 {
		discard := make([]byte, stringColumnCount)
		if _, err := io.ReadFull(r, discard); err != nil {
			return Row{}, fmt.Errorf("reading use_scr region: %w", err)
		}
	}

	return Row{ClassID: classID, ClassName: className, Values: values, UseScr: map[string]bool{}}, nil
}

// sortColumns returns a stably sorted copy of cols per columnLess.
func sortColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	copy(out, cols)
	sort.SliceStable(out, func(i, j int) bool {
		return columnLess(out[i], out[j])
	})
	return out
}
