package classfile

import "sort"

// Flag names one access-flag bit.
type Flag struct {
	Bit  AccessFlags
	Name string
}

// FlagTable decomposes access-flag bitmasks into names. Build it with
// NewFlagTable; the zero value decodes nothing.
type FlagTable struct {
	// descending by bit value
	flags []Flag
}

func NewFlagTable(flags ...Flag) *FlagTable {
	sorted := append([]Flag(nil), flags...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Bit > sorted[j].Bit })
	return &FlagTable{flags: sorted}
}

// MemberFlags is the flag table used for classes, fields and methods. Bits
// shared between contexts (0x20, 0x40, 0x80) use the method names.
var MemberFlags = NewFlagTable(
	Flag{AccPublic, "public"},
	Flag{AccPrivate, "private"},
	Flag{AccProtected, "protected"},
	Flag{AccStatic, "static"},
	Flag{AccFinal, "final"},
	Flag{AccSynchronized, "synchronized"},
	Flag{AccBridge, "bridge"},
	Flag{AccVarargs, "varargs"},
	Flag{AccNative, "native"},
	Flag{AccAbstract, "abstract"},
	Flag{AccStrict, "strict"},
	Flag{AccSynthetic, "synthetic"},
	Flag{AccAnnotation, "annotation"},
	Flag{AccEnum, "enum"},
)

// Decode walks the table from the largest bit down, taking every flag still
// present in the remaining bits. Names come back in ascending bit order and
// bits with no table entry are dropped.
func (t *FlagTable) Decode(bits AccessFlags) []string {
	remaining := bits
	var taken []string
	for _, f := range t.flags {
		if f.Bit != 0 && remaining&f.Bit == f.Bit {
			remaining &^= f.Bit
			taken = append(taken, f.Name)
		}
	}

	names := make([]string, 0, len(taken))
	for i := len(taken) - 1; i >= 0; i-- {
		names = append(names, taken[i])
	}
	return names
}
