package models

import "fmt"

// TypeID enumerates the content types accepted for upload
type TypeID int

const (
	TypeUnknown TypeID = iota
	TypeRPM
	TypeSRPM
	TypePackageGroup
	TypePackageCategory
	TypeErratum
	TypeYumMetadataFile
)

// SupportedTypes lists every type that has an upload handler, in a stable order.
var SupportedTypes = []TypeID{
	TypeRPM,
	TypeSRPM,
	TypePackageGroup,
	TypePackageCategory,
	TypeErratum,
	TypeYumMetadataFile,
}

// String returns the wire identifier of the type
func (t TypeID) String() string {
	switch t {
	case TypeRPM:
		return "rpm"
	case TypeSRPM:
		return "srpm"
	case TypePackageGroup:
		return "package_group"
	case TypePackageCategory:
		return "package_category"
	case TypeErratum:
		return "erratum"
	case TypeYumMetadataFile:
		return "yum_repo_metadata_file"
	default:
		return "unknown"
	}
}

// IsPackage reports whether units of this type carry a package binary.
func (t TypeID) IsPackage() bool {
	return t == TypeRPM || t == TypeSRPM
}

// ParseTypeID maps a declared type identifier onto the closed set of
// supported types.
func ParseTypeID(s string) (TypeID, error) {
	for _, t := range SupportedTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return TypeUnknown, NewUploadError(ErrUnsupportedType, s, fmt.Errorf("no handler for type %q", s))
}
