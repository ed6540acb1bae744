// Package instanceid identifies the running process in shared resolution logs.
package instanceid

import (
	"github.com/google/uuid"
)

// nolint:gochecknoglobals
var instanceID = uuid.New()

// String returns the id of this process, it is stable until exit
func String() string {
	return instanceID.String()
}
