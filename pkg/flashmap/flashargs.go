package flashmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FlashArgs is the parsed contents of an esptool flash_args file.
type FlashArgs struct {
	// Options holds the "--flash_mode dio ..." lines verbatim, split on
	// whitespace. Their values are also set on Layout.
	Options []string
	Layout  Layout
}

// FromFile reads a flash_args file. The layout is named after the file.
func FromFile(path string) (*FlashArgs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseFlashArgs(name, f)
}

// ParseFlashArgs parses lines of "<addr> <file>" pairs. Lines starting with
// "--" are options; '#' and ';' start comments.
func ParseFlashArgs(name string, r io.Reader) (*FlashArgs, error) {
	fa := &FlashArgs{Layout: Layout{Name: name}}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if pos := strings.IndexAny(line, "#;"); pos != -1 {
			line = line[:pos]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		logrus.Debugf("flash_args line %d: %q", lineNum, fields)

		if strings.HasPrefix(fields[0], "--") {
			fa.Options = append(fa.Options, fields...)
			continue
		}
		// esptool writes several pairs on one line, so accept any even count.
		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("line %d: odd number of address/file fields", lineNum)
		}
		for i := 0; i < len(fields); i += 2 {
			addr, err := ParseAddr(fields[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			fa.Layout.Regions = append(fa.Layout.Regions, Region{Addr: addr, File: fields[i+1]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := fa.Layout.applyOptions(fa.Options); err != nil {
		return nil, err
	}
	if err := fa.Layout.Validate(); err != nil {
		return nil, err
	}
	return fa, nil
}

// applyOptions copies the write_flash settings from option fields such as
// "--flash_mode qio" or "--flash_size=4MB" into the layout.
func (l *Layout) applyOptions(fields []string) error {
	for i := 0; i < len(fields); i++ {
		name, value, hasValue := strings.Cut(fields[i], "=")
		var dst *string
		switch name {
		case "--flash_mode":
			dst = &l.FlashMode
		case "--flash_freq":
			dst = &l.FlashFreq
		case "--flash_size":
			dst = &l.FlashSize
		default:
			return fmt.Errorf("unsupported option %s", name)
		}
		if !hasValue {
			if i+1 >= len(fields) || strings.HasPrefix(fields[i+1], "--") {
				return fmt.Errorf("option %s has no value", name)
			}
			i++
			value = fields[i]
		}
		*dst = value
	}
	return nil
}
