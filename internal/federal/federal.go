package federal

import "math"

// MaxID is the largest id an INTEGER column can hold. Larger ids can never
// match a row.
const MaxID = math.MaxInt32

func validID(id int) bool {
	return id >= 1 && id <= MaxID
}

// Level describes one tier of the federal hierarchy.
type Level struct {
	Name   string // display name used in messages, e.g. "Province"
	Table  string // table name and singular route segment
	Plural string // list route segment
	Parent *Level
}

var (
	Country      = &Level{Name: "Country", Table: "country", Plural: "countries"}
	Province     = &Level{Name: "Province", Table: "province", Plural: "provinces", Parent: Country}
	District     = &Level{Name: "District", Table: "district", Plural: "districts", Parent: Province}
	Municipality = &Level{Name: "Municipality", Table: "municipality", Plural: "municipalities", Parent: District}
)

// Levels lists every tier from the root down.
var Levels = []*Level{Country, Province, District, Municipality}

// ParentColumn is the column (and JSON key) holding the parent id, or "" for
// the root level.
func (l *Level) ParentColumn() string {
	if l.Parent == nil {
		return ""
	}
	return l.Parent.Table
}

// Child returns the level directly below l, or nil for the leaf.
func (l *Level) Child() *Level {
	for _, c := range Levels {
		if c.Parent == l {
			return c
		}
	}
	return nil
}

// Division is one row of any federal table. ParentID is zero for countries.
type Division struct {
	ID       int
	Title    string
	TitleNe  *string
	Code     *string
	Order    int
	ParentID int
}

// Patch carries the fields supplied by an update request. Nil means the
// field was not sent. ClearTitleNe and ClearCode reset the column to NULL.
type Patch struct {
	Title        *string
	TitleNe      *string
	Code         *string
	Order        *int
	ParentID     *int
	ClearTitleNe bool
	ClearCode    bool
}

// Apply returns d with every supplied field overwritten.
func (p Patch) Apply(d Division) Division {
	if p.Title != nil {
		d.Title = *p.Title
	}
	switch {
	case p.ClearTitleNe:
		d.TitleNe = nil
	case p.TitleNe != nil:
		d.TitleNe = p.TitleNe
	}
	switch {
	case p.ClearCode:
		d.Code = nil
	case p.Code != nil:
		d.Code = p.Code
	}
	if p.Order != nil {
		d.Order = *p.Order
	}
	if p.ParentID != nil {
		d.ParentID = *p.ParentID
	}
	return d
}
