package catalog

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/utils"
)

// Records larger than this are stored gzip compressed. Package records
// carrying repodata snippets are usually above it.
const compressThreshold = 4 * 1024

// Leading byte of every stored value
const (
	encodingPlain byte = 0
	encodingGzip  byte = 1
)

type unitRecord struct {
	TypeID      string            `cbor:"type_id"`
	ID          string            `cbor:"id"`
	Key         map[string]string `cbor:"key"`
	Metadata    map[string]any    `cbor:"metadata,omitempty"`
	StoragePath string            `cbor:"storage_path,omitempty"`
}

type linkRecord struct {
	TypeID string            `cbor:"type_id"`
	ID     string            `cbor:"id"`
	Key    map[string]string `cbor:"key"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	// Nested maps come back as map[string]any rather than map[any]any
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

func encodeValue(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(data) <= compressThreshold {
		return append([]byte{encodingPlain}, data...), nil
	}
	compressed, err := utils.GzipCompress(data)
	if err != nil {
		return nil, err
	}
	return append([]byte{encodingGzip}, compressed...), nil
}

func decodeValue(raw []byte, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty record")
	}
	data := raw[1:]
	switch raw[0] {
	case encodingPlain:
	case encodingGzip:
		var err error
		data, err = utils.GzipDecompress(data)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown record encoding %d", raw[0])
	}
	return decMode.Unmarshal(data, v)
}

func marshalUnit(u *models.Unit) ([]byte, error) {
	return encodeValue(unitRecord{
		TypeID:      u.TypeID.String(),
		ID:          u.ID,
		Key:         u.Key,
		Metadata:    u.Metadata,
		StoragePath: u.StoragePath,
	})
}

func unmarshalUnit(raw []byte) (*models.Unit, error) {
	var rec unitRecord
	if err := decodeValue(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode unit: %w", err)
	}
	typeID, err := models.ParseTypeID(rec.TypeID)
	if err != nil {
		return nil, err
	}
	return &models.Unit{
		ID:          rec.ID,
		TypeID:      typeID,
		Key:         rec.Key,
		Metadata:    rec.Metadata,
		StoragePath: rec.StoragePath,
	}, nil
}

func marshalLink(to *models.Unit) ([]byte, error) {
	return encodeValue(linkRecord{TypeID: to.TypeID.String(), ID: to.ID, Key: to.Key})
}

func unmarshalLink(raw []byte) (models.UnitRef, error) {
	var rec linkRecord
	if err := decodeValue(raw, &rec); err != nil {
		return models.UnitRef{}, fmt.Errorf("failed to decode link: %w", err)
	}
	typeID, err := models.ParseTypeID(rec.TypeID)
	if err != nil {
		return models.UnitRef{}, err
	}
	return models.UnitRef{TypeID: typeID, ID: rec.ID, Key: rec.Key}, nil
}
