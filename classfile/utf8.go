package classfile

import "unicode/utf8"

// DecodeModifiedUTF8 decodes the modified UTF-8 used by CONSTANT_Utf8
// entries. NUL is encoded as the two bytes C0 80 and supplementary
// characters as a pair of three-byte surrogates. Malformed sequences decode
// to U+FFFD instead of failing.
func DecodeModifiedUTF8(b []byte) string {
	runes := make([]rune, 0, len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c&0x80 == 0:
			runes = append(runes, rune(c))
			i++

		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				runes = append(runes, utf8.RuneError)
				i++
				continue
			}
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2

		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				runes = append(runes, utf8.RuneError)
				i++
				continue
			}
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3]&0xF0 == 0xE0 {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+(r-0xD800)<<10+(low-0xDC00))
					i += 6
					continue
				}
			}
			if r >= 0xD800 && r <= 0xDFFF {
				r = utf8.RuneError
			}
			runes = append(runes, r)
			i += 3

		default:
			runes = append(runes, utf8.RuneError)
			i++
		}
	}
	return string(runes)
}
