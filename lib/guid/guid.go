/*
	Generates process-unique random identifiers.

	IDs are the hex form of a version 4 UUID with the dashes dropped,
	so they are safe in file names, unit names, and URLs alike.
*/
package guid

import (
	"encoding/hex"

	"github.com/google/uuid"
)

const size = 32

func New() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
