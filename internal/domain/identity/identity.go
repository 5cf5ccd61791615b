// Package identity defines the stable entity identifier used across
// connectors, the offline store and the ranking pipeline.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// bareHexLength is the length of a UUID stored without separators,
// a legacy encoding used by some third-party plugin databases.
const bareHexLength = 32

// derivePrefix is prepended to a display name before hashing when no
// usable identifier is stored. The resulting MD5-based UUID is a stable
// compatibility contract: the same name always derives the same ID.
const derivePrefix = "OfflinePlayer:"

// ID is a stable 128-bit entity identifier.
type ID uuid.UUID

// Nil is the zero ID.
var Nil = ID(uuid.Nil)

// String returns the canonical hyphenated form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero value.
func (id ID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// Parse accepts both the canonical hyphenated form and the bare
// 32-character hex form, re-inserting separators before parsing.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if len(s) == bareHexLength && !strings.Contains(s, "-") {
		s = s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:]
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, err
	}
	return ID(u), nil
}

// FromDisplayName deterministically derives an ID from a display name.
// Repeated calls with the same name yield the same ID.
func FromDisplayName(name string) ID {
	return ID(uuid.NewMD5(uuid.NameSpaceOID, []byte(derivePrefix+name)))
}

// ParseOrDerive parses raw as an identifier, falling back to a
// name-derived ID when raw is empty or malformed.
func ParseOrDerive(raw, displayName string) ID {
	if raw == "" {
		return FromDisplayName(displayName)
	}
	id, err := Parse(raw)
	if err != nil {
		return FromDisplayName(displayName)
	}
	return id
}
