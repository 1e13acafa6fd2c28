package engine

import (
	"github.com/hellodevice/flashhello/pkg/flashmap"
	"github.com/hellodevice/flashhello/pkg/serialport"
)

type CommandType int

const (
	RescanPorts CommandType = iota
	DownloadFirmware
	Flash
	ClearLog
)

func (c CommandType) String() string {
	switch c {
	case RescanPorts:
		return "RescanPorts"
	case DownloadFirmware:
		return "DownloadFirmware"
	case Flash:
		return "Flash"
	case ClearLog:
		return "ClearLog"
	default:
		return "Unknown"
	}
}

// Command is a request from the interactive surface.
type Command struct {
	Type CommandType
	// Port and Layout are only used by Flash.
	Port   string
	Layout flashmap.Layout
}

type ReplyType int

const (
	LogLine ReplyType = iota
	PortsListed
	ShowInfo
	ShowError
	ClearedLog
	// Done is the last reply of every command.
	Done
)

func (r ReplyType) String() string {
	switch r {
	case LogLine:
		return "LogLine"
	case PortsListed:
		return "PortsListed"
	case ShowInfo:
		return "ShowInfo"
	case ShowError:
		return "ShowError"
	case ClearedLog:
		return "ClearedLog"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Reply is an event for the interactive surface. Replies belonging to one
// command arrive in the order they were produced.
type Reply struct {
	EventType ReplyType
	Command   CommandType
	Text      string
	Title     string
	Ports     []serialport.Descriptor
}
