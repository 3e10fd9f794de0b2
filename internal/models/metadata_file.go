package models

import "path"

// YumMetadataFileKeyFields are the unit key fields of repository metadata files
var YumMetadataFileKeyFields = []string{"data_type", "repo_id"}

// YumMetadataFile is an extra repodata file (updateinfo, modules, ...)
// carried verbatim into a repository
type YumMetadataFile struct {
	key      UnitKey
	metadata Metadata
}

// NewYumMetadataFile validates a yum_repo_metadata_file unit. The checksum
// fields are computed by the upload handler from the staged file.
func NewYumMetadataFile(key map[string]any, metadata map[string]any) (*YumMetadataFile, error) {
	k, err := buildKey(key, YumMetadataFileKeyFields)
	if err != nil {
		return nil, err
	}
	md := Metadata(metadata).Clone()
	for _, name := range []string{"filename", "checksum", "checksum_type"} {
		if _, err := requireString(md, name); err != nil {
			return nil, err
		}
	}
	return &YumMetadataFile{key: k, metadata: md}, nil
}

func (f *YumMetadataFile) TypeID() TypeID     { return TypeYumMetadataFile }
func (f *YumMetadataFile) UnitKey() UnitKey   { return f.key.Clone() }
func (f *YumMetadataFile) Metadata() Metadata { return f.metadata }

func (f *YumMetadataFile) RelativePath() string {
	return path.Join(f.key["repo_id"], path.Base(f.metadata.String("filename")))
}
