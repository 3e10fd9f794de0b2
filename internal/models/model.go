package models

import (
	"fmt"
	"strings"
)

// Model is a validated, fully typed unit ready to be handed to the catalog
type Model interface {
	TypeID() TypeID
	UnitKey() UnitKey
	Metadata() Metadata

	// RelativePath is where the unit's file lives below the type's storage
	// directory; empty for metadata-only types.
	RelativePath() string
}

// buildKey validates fields against the exact key field set of a type.
// Every listed field must be a non-empty string and no other fields may
// be present.
func buildKey(fields map[string]any, names []string) (UnitKey, error) {
	key := make(UnitKey, len(names))
	for _, name := range names {
		s, err := requireString(fields, name)
		if err != nil {
			return nil, err
		}
		key[name] = s
	}

	var unknown []string
	for name := range fields {
		if _, ok := key[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unexpected key fields %s", ErrFieldType, strings.Join(unknown, ", "))
	}

	return key, nil
}

func requireString(fields map[string]any, name string) (string, error) {
	v, ok := fields[name]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrFieldType, name, v)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return s, nil
}

func optionalString(fields map[string]any, name string) (string, error) {
	v, ok := fields[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrFieldType, name, v)
	}
	return s, nil
}

// SanitizeChecksumType normalizes checksum algorithm names; "sha" is an
// old alias of "sha1".
func SanitizeChecksumType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "sha" {
		return "sha1"
	}
	return t
}
