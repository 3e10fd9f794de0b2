package catalog

import (
	"fmt"

	"github.com/ralt/yumupload/internal/models"
)

// Key prefixes
const (
	unitPrefix = "unit"
	linkPrefix = "link"
)

// makeUnitKey generates the key of a unit record.
// Format: unit:type:id
func makeUnitKey(typeID models.TypeID, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", unitPrefix, typeID, id))
}

// makeUnitTypePrefix generates the prefix shared by all units of a type
func makeUnitTypePrefix(typeID models.TypeID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", unitPrefix, typeID))
}

// makeLinkKey generates the key of a link from one unit to another.
// Format: link:fromtype:fromid:totype:toid
func makeLinkKey(from, to *models.Unit) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s:%s", linkPrefix, from.TypeID, from.ID, to.TypeID, to.ID))
}

// makeLinkPrefix generates the prefix shared by all links of a unit
func makeLinkPrefix(from *models.Unit) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", linkPrefix, from.TypeID, from.ID))
}
