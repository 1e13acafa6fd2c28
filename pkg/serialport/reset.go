package serialport

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// TouchBaud is the baud rate that makes USB CDC bootloaders reset.
const TouchBaud = 1200

// Port is the part of a serial connection the reset touch needs.
type Port interface {
	SetDTR(dtr bool) error
	Close() error
}

// Opener opens a serial port at the given baud rate.
type Opener func(path string, baud int) (Port, error)

// OpenSerial opens a real serial port.
func OpenSerial(path string, baud int) (Port, error) {
	return serial.Open(path, &serial.Mode{BaudRate: baud})
}

// Resetter forces a device into its bootloader by touching its port at 1200 baud.
type Resetter struct {
	Open Opener
}

// NewResetter returns a Resetter that talks to real serial ports.
func NewResetter() *Resetter {
	return &Resetter{Open: OpenSerial}
}

// TouchReset opens the port, drops DTR and closes it again. No data is exchanged.
func (r *Resetter) TouchReset(path string) error {
	open := r.Open
	if open == nil {
		open = OpenSerial
	}
	port, err := open(path, TouchBaud)
	if err != nil {
		return fmt.Errorf("cannot open serial port %q: %v", path, err)
	}
	dtrErr := port.SetDTR(false)
	closeErr := port.Close()
	if dtrErr != nil {
		return fmt.Errorf("cannot drop DTR on %q: %v", path, dtrErr)
	}
	if closeErr != nil {
		return fmt.Errorf("cannot close serial port %q: %v", path, closeErr)
	}
	logrus.Debugf("Touched %s at %d baud", path, TouchBaud)
	return nil
}
