package models

import (
	"fmt"
	"strconv"
)

// SkipErratumLinkOption is the option name that disables linking a newly
// uploaded erratum to the packages it references.
const SkipErratumLinkOption = "skip_erratum_link"

// Repository identifies the repository an upload is performed against
type Repository struct {
	ID string
}

// UploadOptions holds the recognized per-upload options
type UploadOptions struct {
	SkipErratumLink bool
}

// ParseUploadOptions reads the recognized flags out of a generic option map.
// Unknown options are ignored.
func ParseUploadOptions(raw map[string]any) (UploadOptions, error) {
	var opts UploadOptions

	v, ok := raw[SkipErratumLinkOption]
	if !ok || v == nil {
		return opts, nil
	}

	switch b := v.(type) {
	case bool:
		opts.SkipErratumLink = b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return opts, fmt.Errorf("option %s: %w", SkipErratumLinkOption, err)
		}
		opts.SkipErratumLink = parsed
	default:
		return opts, fmt.Errorf("option %s: expected boolean, got %T", SkipErratumLinkOption, v)
	}

	return opts, nil
}
