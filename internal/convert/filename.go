// Package convert wires the conversion pipeline end to end.
package convert

import (
	"time"

	"github.com/miriam/othersupport-converter/internal/types"
)

// timestampLayout is the filename timestamp shape.
const timestampLayout = "2006-01-02_15-04-05"

// noName is the filename stem when the document carried no usable name.
const noName = "no_name_found"

// Filename builds the download filename for a converted profile:
// "Last_First_<timestamp>.xml", degrading to just the first name and
// finally to "no_name_found" as name parts are missing.
func Filename(p *types.Profile, at time.Time) string {
	name := p.Identification.Name
	base := noName
	switch {
	case name.FirstName != "" && name.LastName != "":
		base = name.LastName + "_" + name.FirstName
	case name.FirstName != "":
		base = name.FirstName
	}
	return base + "_" + at.Format(timestampLayout) + ".xml"
}
