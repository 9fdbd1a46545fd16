// Package archive defines the on-disk contract of the downloads tree:
// the bracket-tag folder-name grammar carrying subject/class identifiers,
// the section filename pattern, and the hierarchy scanner the report
// generators consume.
package archive

import (
	"fmt"
	"regexp"
	"strings"
)

// Info is the identity parsed back out of a class folder name.
type Info struct {
	Name string // display name, bracket tag stripped
	SID  string // subject id digits
	CID  string // class id digits, empty when the folder carries only sid
}

// folderTagRe matches the bracket-tag grammar:
//
//	<Display Name> [sid-<digits>]
//	<Display Name> [sid-<digits>-cid-<digits>]
//
// The tag must round-trip exactly; downstream tooling extracts ids from it.
var folderTagRe = regexp.MustCompile(`^(.*?)\s*\[sid-(\d+)(?:-cid-(\d+))?\]$`)

// FolderName formats a class output folder name. cid may be empty.
func FolderName(name, sid, cid string) string {
	if cid != "" {
		return fmt.Sprintf("%s [sid-%s-cid-%s]", name, sid, cid)
	}
	return fmt.Sprintf("%s [sid-%s]", name, sid)
}

// ParseFolderName extracts the identifiers from a folder name. ok is false
// when the bracket tag is missing or malformed; it never panics.
func ParseFolderName(s string) (Info, bool) {
	m := folderTagRe.FindStringSubmatch(s)
	if m == nil {
		return Info{}, false
	}
	return Info{
		Name: strings.TrimSpace(m[1]),
		SID:  m[2],
		CID:  m[3],
	}, true
}

// sectionFileRe matches capture filenames of the form
// "1.1,_Introduction_to_cells.mhtml" produced by the capture service.
var sectionFileRe = regexp.MustCompile(`^(\d+\.\d+),_(.+)\.(mhtml|html)$`)

// ParseSectionFile splits a capture filename into section number and title.
// Underscores in the title collapse back to spaces for display.
func ParseSectionFile(name string) (number, title string, ok bool) {
	m := sectionFileRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.ReplaceAll(m[2], "_", " "), true
}

// FormatSize renders a byte count in human-readable form.
func FormatSize(size int64) string {
	const unit = 1024.0
	s := float64(size)
	for _, u := range []string{"B", "KB", "MB", "GB"} {
		if s < unit {
			return fmt.Sprintf("%.1f %s", s, u)
		}
		s /= unit
	}
	return fmt.Sprintf("%.1f TB", s)
}
