package titleid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier reports an identifier with the wrong length, non-hex
// characters, or an unknown platform/category pair.
var ErrInvalidIdentifier = errors.New("invalid title identifier")

const (
	// Length is the number of hex characters in an identifier.
	Length = 16

	platformWii  = "0001"
	platform3DS  = "0004"
	platformWiiU = "0005"

	categoryGame    = "0000"
	categoryDemo    = "0002"
	categoryWiiGame = "0001"
	categoryWiiDLC  = "0005"
	categoryUpdate  = "000E"
	categoryDLC     = "000C"
	category3DSDLC  = "008C"
	categoryDSiWare = "8004"
)

var classification = map[string]map[string]Partition{
	platformWii: {
		categoryWiiGame: GamesWii,
		categoryWiiDLC:  GamesWii,
	},
	platform3DS: {
		categoryGame:    Games3DS,
		categoryDemo:    None,
		categoryUpdate:  Updates3DS,
		category3DSDLC:  Dlcs3DS,
		categoryDSiWare: Games3DS,
	},
	platformWiiU: {
		categoryGame:   Games,
		categoryDemo:   None,
		categoryDLC:    Dlcs,
		categoryUpdate: Updates,
	},
}

// ID is a normalized, upper-case title identifier. The zero value is not a
// valid identifier.
type ID struct {
	value string
}

// Parse validates and normalizes s.
func Parse(s string) (ID, error) {
	value := strings.ToUpper(s)
	if len(value) != Length {
		return ID{}, fmt.Errorf("%w: %q has length %d", ErrInvalidIdentifier, s, len(value))
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return ID{}, fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidIdentifier, s)
		}
	}
	categories, ok := classification[value[:4]]
	if !ok {
		return ID{}, fmt.Errorf("%w: %q has unknown platform %s", ErrInvalidIdentifier, s, value[:4])
	}
	if _, ok := categories[value[4:8]]; !ok {
		return ID{}, fmt.Errorf("%w: %q has unknown category %s", ErrInvalidIdentifier, s, value[4:8])
	}
	return ID{value: value}, nil
}

// MustParse is Parse for identifiers known at compile time.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromUint64 renders v as a 16-digit identifier and parses it.
func FromUint64(v uint64) (ID, error) {
	return Parse(fmt.Sprintf("%016X", v))
}

func (id ID) String() string { return id.value }

// IsZero reports whether id was never parsed.
func (id ID) IsZero() bool { return id.value == "" }

func (id ID) Platform() string { return id.slice(0, 4) }

func (id ID) Category() string { return id.slice(4, 8) }

func (id ID) High() string { return id.slice(0, 8) }

func (id ID) Low() string { return id.slice(8, 16) }

func (id ID) slice(from, to int) string {
	if len(id.value) != Length {
		return ""
	}
	return id.value[from:to]
}

// Partition classifies id.
func (id ID) Partition() Partition {
	if id.IsZero() {
		return None
	}
	return classification[id.Platform()][id.Category()]
}

func (id ID) IsGame() bool { return id.Partition().IsGamePartition() }

func (id ID) IsUpdate() bool { return id.Partition().IsUpdatePartition() }

func (id ID) IsDLC() bool { return id.Partition().IsDLCPartition() }

// GameID returns the base game of id.
func (id ID) GameID() (ID, bool) {
	switch id.Partition() {
	case Games, Games3DS, GamesWii:
		return id, true
	case Updates, Dlcs, Updates3DS, Dlcs3DS:
		return id.withCategory(categoryGame), true
	default:
		return ID{}, false
	}
}

// UpdateID returns the update sibling of id.
func (id ID) UpdateID() (ID, bool) {
	switch id.Partition() {
	case Updates, Updates3DS:
		return id, true
	case Games, Dlcs, Games3DS, Dlcs3DS:
		return id.withCategory(categoryUpdate), true
	default:
		return ID{}, false
	}
}

// DLCID returns the DLC sibling of id.
func (id ID) DLCID() (ID, bool) {
	switch id.Partition() {
	case Dlcs, Dlcs3DS:
		return id, true
	case Games, Updates:
		return id.withCategory(categoryDLC), true
	case Games3DS, Updates3DS:
		return id.withCategory(category3DSDLC), true
	default:
		return ID{}, false
	}
}

func (id ID) withCategory(category string) ID {
	return ID{value: id.Platform() + category + id.Low()}
}

// Compare orders identifiers lexicographically.
func (id ID) Compare(other ID) int {
	return strings.Compare(id.value, other.value)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
