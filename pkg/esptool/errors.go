package esptool

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// ErrNoPort is returned when a flash is requested without a serial port.
var ErrNoPort = errors.New("no serial port selected")

// MissingFilesError lists every layout file absent from the working directory.
type MissingFilesError struct {
	Names []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("missing required files: %s", strings.Join(e.Names, ", "))
}

// ExitError reports that esptool exited with a nonzero code.
type ExitError struct {
	Label string
	Code  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s flashing did not complete successfully (exit code %d)", e.Label, e.Code)
}
