// Package permissions converts between the owner/group/other read-write-execute
// triad and the platform's numeric file mode.
package permissions

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Access is one read/write/execute triple.
type Access struct {
	Read    bool
	Write   bool
	Execute bool
}

// Permissions is the full POSIX permission triad. ACLs and special bits are
// outside its scope.
type Permissions struct {
	Owner Access
	Group Access
	Other Access
}

// FromMode extracts the permission triad from mode; all other bits are ignored.
func FromMode(mode fs.FileMode) Permissions {
	bits := mode.Perm()
	return Permissions{
		Owner: accessFrom(uint32(bits) >> 6),
		Group: accessFrom(uint32(bits) >> 3),
		Other: accessFrom(uint32(bits)),
	}
}

func accessFrom(v uint32) Access {
	return Access{
		Read:    v&0o4 != 0,
		Write:   v&0o2 != 0,
		Execute: v&0o1 != 0,
	}
}

func (a Access) bits() uint32 {
	var v uint32
	if a.Read {
		v |= 0o4
	}
	if a.Write {
		v |= 0o2
	}
	if a.Execute {
		v |= 0o1
	}
	return v
}

// Mode returns the numeric permission bits.
func (p Permissions) Mode() fs.FileMode {
	return fs.FileMode(p.Owner.bits()<<6 | p.Group.bits()<<3 | p.Other.bits())
}

// Bits returns the triad as nine flags: owner rwx, group rwx, other rwx.
func (p Permissions) Bits() [9]bool {
	return [9]bool{
		p.Owner.Read, p.Owner.Write, p.Owner.Execute,
		p.Group.Read, p.Group.Write, p.Group.Execute,
		p.Other.Read, p.Other.Write, p.Other.Execute,
	}
}

// FromBits is the inverse of Bits.
func FromBits(bits []bool) (Permissions, error) {
	if len(bits) != 9 {
		return Permissions{}, fmt.Errorf("permission list needs 9 flags, got %d", len(bits))
	}
	return Permissions{
		Owner: Access{bits[0], bits[1], bits[2]},
		Group: Access{bits[3], bits[4], bits[5]},
		Other: Access{bits[6], bits[7], bits[8]},
	}, nil
}

// String renders the ls-style form, e.g. "rwxr-x---".
func (p Permissions) String() string {
	const rwx = "rwxrwxrwx"
	var sb strings.Builder
	for i, set := range p.Bits() {
		if set {
			sb.WriteByte(rwx[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// Octal renders the numeric form, e.g. "0750".
func (p Permissions) Octal() string {
	return fmt.Sprintf("%04o", uint32(p.Mode()))
}

// Parse accepts either the ls-style form ("rw-r--r--") or an octal number
// ("644", "0755").
func Parse(s string) (Permissions, error) {
	s = strings.TrimSpace(s)
	if len(s) == 9 && strings.Trim(s, "rwx-") == "" {
		return parseSymbolic(s)
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || len(s) < 3 || len(s) > 4 {
		return Permissions{}, fmt.Errorf("invalid permissions %q: want rwxrwxrwx or octal", s)
	}
	if v > 0o777 {
		return Permissions{}, fmt.Errorf("invalid permissions %q: only rwx bits are supported", s)
	}
	return FromMode(fs.FileMode(v)), nil
}

func parseSymbolic(s string) (Permissions, error) {
	const rwx = "rwxrwxrwx"
	bits := make([]bool, 9)
	for i := 0; i < 9; i++ {
		switch s[i] {
		case rwx[i]:
			bits[i] = true
		case '-':
		default:
			return Permissions{}, fmt.Errorf("invalid permissions %q: unexpected %q at %d", s, s[i], i)
		}
	}
	return FromBits(bits)
}
