package udf

import "unsafe"

// testCell is one argument slot laid out the way the host provides it.
type testCell struct {
	typ       ArgType
	data      *byte
	length    ULong
	maybeNull bool
	attribute string
}

func intCell(v int64) testCell {
	p := new(int64)
	*p = v
	return testCell{typ: INT_RESULT, data: (*byte)(unsafe.Pointer(p))}
}

func realCell(v float64) testCell {
	p := new(float64)
	*p = v
	return testCell{typ: REAL_RESULT, data: (*byte)(unsafe.Pointer(p))}
}

func bytesCell(typ ArgType, s string) testCell {
	b := make([]byte, len(s), len(s)+1)
	copy(b, s)
	return testCell{typ: typ, data: unsafe.SliceData(b), length: ULong(len(s))}
}

func stringCell(s string) testCell  { return bytesCell(STRING_RESULT, s) }
func decimalCell(s string) testCell { return bytesCell(DECIMAL_RESULT, s) }

func nullCell(typ ArgType) testCell { return testCell{typ: typ} }

func (c testCell) nullable() testCell {
	c.maybeNull = true
	return c
}

func (c testCell) named(attr string) testCell {
	c.attribute = attr
	return c
}

// rawArgs builds a UDFArgs in Go memory. The arrays stay reachable through
// the returned struct.
func rawArgs(cells ...testCell) *UDFArgs {
	raw := &UDFArgs{ArgCount: uint32(len(cells))}
	if len(cells) == 0 {
		return raw
	}
	types := make([]ArgType, len(cells))
	datas := make([]*byte, len(cells))
	lengths := make([]ULong, len(cells))
	maybeNull := make([]byte, len(cells))
	attrs := make([]*byte, len(cells))
	attrLens := make([]ULong, len(cells))
	for i, c := range cells {
		types[i] = c.typ
		datas[i] = c.data
		lengths[i] = c.length
		maybeNull[i] = boolByte(c.maybeNull)
		if c.attribute != "" {
			b := []byte(c.attribute)
			attrs[i] = unsafe.SliceData(b)
			attrLens[i] = ULong(len(b))
		}
	}
	raw.ArgType = unsafe.SliceData(types)
	raw.Args = unsafe.SliceData(datas)
	raw.Lengths = unsafe.SliceData(lengths)
	raw.MaybeNull = unsafe.SliceData(maybeNull)
	raw.Attributes = unsafe.SliceData(attrs)
	raw.AttributeLengths = unsafe.SliceData(attrLens)
	return raw
}

func newMsgBuf() []byte {
	buf := make([]byte, ErrMsgSize)
	for i := range buf {
		buf[i] = 0xAA
	}
	return buf
}

// cString reads the NUL-terminated string at the start of buf.
func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
