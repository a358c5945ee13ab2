package palette

// Defaults is the rotation used for newly created departments and roles.
var Defaults = []string{
	"#2563eb",
	"#16a34a",
	"#f59e0b",
	"#dc2626",
	"#7c3aed",
	"#0891b2",
	"#db2777",
	"#65a30d",
	"#ea580c",
	"#4f46e5",
}

// Palette hands out colors round-robin. It is scoped to one editing session
// and is not safe for concurrent use.
type Palette struct {
	colors []string
	cursor int
}

// New builds a palette over colors starting at offset. An empty list uses Defaults.
func New(colors []string, offset int) *Palette {
	if len(colors) == 0 {
		colors = Defaults
	}
	if offset < 0 {
		offset = 0
	}
	return &Palette{colors: append([]string(nil), colors...), cursor: offset % len(colors)}
}

// Next returns the next color and advances the cursor.
func (p *Palette) Next() string {
	c := p.colors[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.colors)
	return c
}
