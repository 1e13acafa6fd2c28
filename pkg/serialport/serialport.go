package serialport

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Descriptor is a serial port as seen by the enumerator. It is not kept
// across rescans.
type Descriptor struct {
	Path        string
	Description string
}

// String renders the port the way it is shown in a port selector.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s - %s", d.Path, d.Description)
}

// PathFromLabel recovers the device path from a "path - description" label.
// A bare path is returned unchanged.
func PathFromLabel(label string) string {
	path, _, _ := strings.Cut(label, " - ")
	return strings.TrimSpace(path)
}

// Enumerators used by List. Tests replace them.
var (
	detailedPorts = enumerator.GetDetailedPortsList
	plainPorts    = serial.GetPortsList
)

// List returns the serial ports present on the system, in the order the OS
// reports them. It never fails: if enumeration fails an empty list is returned.
func List() []Descriptor {
	details, err := detailedPorts()
	if err == nil {
		ports := make([]Descriptor, 0, len(details))
		for _, d := range details {
			ports = append(ports, Descriptor{Path: d.Name, Description: describe(d)})
		}
		return ports
	}
	logrus.Warnf("Detailed port enumeration failed, falling back to plain list: %v", err)

	names, err := plainPorts()
	if err != nil {
		logrus.Errorf("Cannot enumerate serial ports: %v", err)
		return []Descriptor{}
	}
	ports := make([]Descriptor, 0, len(names))
	for _, name := range names {
		ports = append(ports, Descriptor{Path: name, Description: "n/a"})
	}
	return ports
}

func describe(d *enumerator.PortDetails) string {
	switch {
	case d.Product != "":
		return d.Product
	case d.IsUSB:
		return fmt.Sprintf("USB VID:PID=%s:%s", strings.ToUpper(d.VID), strings.ToUpper(d.PID))
	default:
		return "n/a"
	}
}
