package udf

import (
	"strings"
	"unicode/utf8"
	"unsafe"
)

// truncateMessage cuts s to at most max bytes without splitting a UTF-8
// sequence. Anything after an embedded NUL is dropped since the host reads
// the buffer as a C string.
func truncateMessage(s string, max int) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) <= max {
		return s
	}
	n := max
	for back := 0; n > 0 && back < utf8.UTFMax-1 && !utf8.RuneStart(s[n]); back++ {
		n--
	}
	if !utf8.RuneStart(s[n]) {
		// not valid UTF-8 around the cut, keep the byte limit
		n = max
	}
	return s[:n]
}

// writeMessage copies s into the host's ErrMsgSize message buffer as a
// NUL-terminated string.
func writeMessage(buf *byte, s string) {
	if buf == nil {
		return
	}
	dst := unsafe.Slice(buf, ErrMsgSize)
	s = truncateMessage(s, MaxErrMsgLen)
	n := copy(dst, s)
	dst[n] = 0
}
