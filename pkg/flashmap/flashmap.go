package flashmap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FlashSize8MB is the size of the flash on HelloDevice boards.
const FlashSize8MB int64 = 8 * 1024 * 1024

// Region is one image written at a fixed flash offset.
type Region struct {
	Addr uint32
	File string
}

// AddrString renders the offset the way esptool expects it on its command line.
func (r Region) AddrString() string {
	return fmt.Sprintf("0x%04x", r.Addr)
}

// Layout is an ordered list of regions. The order is the write order.
// Non-empty flash settings override the executor's defaults for this layout.
type Layout struct {
	Name      string
	Regions   []Region
	FlashMode string
	FlashFreq string
	FlashSize string
}

func sharedRegions(app string) []Region {
	return []Region{
		{Addr: 0x0000, File: "HelloDevice.ino.bootloader.bin"},
		{Addr: 0x8000, File: "HelloDevice.ino.partitions.bin"},
		{Addr: 0xe000, File: "boot_app0.bin"},
		{Addr: 0x10000, File: app},
		{Addr: 0x410000, File: "tinyuf2.bin"},
	}
}

// WiFi returns the layout for the WiFi firmware. Every call returns a fresh copy.
func WiFi() Layout {
	return Layout{Name: "WiFi", Regions: sharedRegions("HelloDevice.ino.bin")}
}

// Cellular returns the layout for the cellular firmware.
func Cellular() Layout {
	return Layout{Name: "Cellular", Regions: sharedRegions("HelloCell.ino.bin")}
}

// Presets returns all built-in layouts.
func Presets() []Layout {
	return []Layout{WiFi(), Cellular()}
}

// ByName looks up a built-in layout, ignoring case.
func ByName(name string) (Layout, error) {
	for _, l := range Presets() {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("unknown layout %q", name)
}

// ParseAddr parses a hex flash offset such as "0xe000".
func ParseAddr(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, fmt.Errorf("address %q is not hex-encoded", s)
	}
	addr, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %q to uint32: %v", s, err)
	}
	return uint32(addr), nil
}

// Files returns the file names in write order.
func (l Layout) Files() []string {
	files := make([]string, 0, len(l.Regions))
	for _, r := range l.Regions {
		files = append(files, r.File)
	}
	return files
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	regions := make([]Region, len(l.Regions))
	copy(regions, l.Regions)
	c := l
	c.Regions = regions
	return c
}

// Validate checks that the layout is non-empty, that every region names a
// file and that no two regions share an offset. Regions may come in any order.
func (l Layout) Validate() error {
	if len(l.Regions) == 0 {
		return fmt.Errorf("layout %q has no regions", l.Name)
	}
	seen := make(map[uint32]int, len(l.Regions))
	for i, r := range l.Regions {
		if r.File == "" {
			return fmt.Errorf("layout %q: region #%d at %s has no file", l.Name, i, r.AddrString())
		}
		if j, ok := seen[r.Addr]; ok {
			return fmt.Errorf("layout %q: regions #%d and #%d both start at %s", l.Name, j, i, r.AddrString())
		}
		seen[r.Addr] = i
	}
	return nil
}

// Missing returns the files of the layout that do not exist in dir, in layout order.
func (l Layout) Missing(dir string) []string {
	var missing []string
	for _, r := range l.Regions {
		if _, err := os.Stat(filepath.Join(dir, r.File)); err != nil {
			missing = append(missing, r.File)
		}
	}
	return missing
}

// CheckFit verifies that each image ends before the next region by offset
// starts and that the last one ends within flashSize.
func (l Layout) CheckFit(dir string, flashSize int64) error {
	if err := l.Validate(); err != nil {
		return err
	}
	regions := l.Clone().Regions
	sort.Slice(regions, func(i, j int) bool { return regions[i].Addr < regions[j].Addr })
	for i, r := range regions {
		fi, err := os.Stat(filepath.Join(dir, r.File))
		if err != nil {
			return fmt.Errorf("cannot stat %q: %v", r.File, err)
		}
		limit := flashSize
		if i+1 < len(regions) {
			limit = int64(regions[i+1].Addr)
		}
		if end := int64(r.Addr) + fi.Size(); end > limit {
			return fmt.Errorf("%s at %s ends at 0x%X, past 0x%X", r.File, r.AddrString(), end, limit)
		}
	}
	return nil
}

// String implements Stringer interface.
func (l Layout) String() string {
	info := fmt.Sprintf("Layout %s: %d regions\n", l.Name, len(l.Regions))
	for _, o := range [][2]string{{"mode", l.FlashMode}, {"freq", l.FlashFreq}, {"size", l.FlashSize}} {
		if o[1] != "" {
			info += fmt.Sprintf("  Flash %s: %s\n", o[0], o[1])
		}
	}
	for i, r := range l.Regions {
		info += fmt.Sprintf("  Region #%d: [%08X] %s\n", i, r.Addr, r.File)
	}
	return info
}
