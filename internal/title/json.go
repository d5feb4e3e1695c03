package title

import (
	"bytes"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	gameIconSentinel    = "#N/A"
	gameProductSentinel = "-"
	gameRegionSentinel  = "N/A"
)

// MarshalJSON renders the catalog object layout. Empty values are written
// with the sentinels existing readers expect, which differ between game and
// non-game identifiers.
func (r *Record) MarshalJSON() ([]byte, error) {
	isGame := r.id.IsGame()

	var buf bytes.Buffer
	buf.Grow(256)
	buf.WriteByte('{')

	writeKey(&buf, "EshopId", true)
	writeOptional(&buf, r.EshopID, isGame)

	writeKey(&buf, "IconUrl", false)
	switch {
	case r.IconURL != "":
		writeString(&buf, r.IconURL)
	case isGame:
		writeString(&buf, gameIconSentinel)
	default:
		writeString(&buf, "")
	}

	writeKey(&buf, "Name", false)
	writeOptional(&buf, r.Name, isGame)

	writeKey(&buf, "Platform", false)
	buf.WriteString(strconv.Itoa(r.Platform))

	writeKey(&buf, "ProductCode", false)
	switch {
	case r.ProductCode != "":
		writeString(&buf, r.ProductCode)
	case isGame:
		writeString(&buf, gameProductSentinel)
	default:
		buf.WriteString("null")
	}

	writeKey(&buf, "Region", false)
	switch {
	case r.Region != RegionNone:
		writeString(&buf, r.Region.String())
	case isGame:
		writeString(&buf, gameRegionSentinel)
	default:
		writeString(&buf, "")
	}

	writeKey(&buf, "Size", false)
	writeString(&buf, strconv.FormatUint(r.Size, 10))

	writeKey(&buf, "TitleId", false)
	writeString(&buf, r.id.String())

	writeKey(&buf, "PreLoad", false)
	buf.WriteString(strconv.FormatBool(r.PreLoad))

	writeKey(&buf, "Version", false)
	writeString(&buf, r.VersionString())

	writeKey(&buf, "DiscOnly", false)
	buf.WriteString(strconv.FormatBool(r.DiscOnly()))

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	writeString(buf, key)
	buf.WriteByte(':')
}

// writeOptional writes value, or null for games and "" otherwise.
func writeOptional(buf *bytes.Buffer, value string, isGame bool) {
	switch {
	case value != "":
		writeString(buf, value)
	case isGame:
		buf.WriteString("null")
	default:
		writeString(buf, "")
	}
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	buf.WriteString(Escape(s))
	buf.WriteByte('"')
}

// Escape renders s as the body of a JSON string using only printable ASCII.
// Forward slashes are escaped and every other rune outside 0x20..0x7E becomes
// one or two lower-case \uXXXX sequences.
func Escape(s string) string {
	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '/':
			b.WriteString(`\/`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if r >= 0x20 && r <= 0x7e {
				b.WriteRune(r)
				continue
			}
			if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
				writeUnit(&b, r1)
				writeUnit(&b, r2)
				continue
			}
			writeUnit(&b, r)
		}
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func writeUnit(b *bytes.Buffer, r rune) {
	b.WriteString(`\u`)
	for shift := 12; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(r>>shift)&0xf])
	}
}
