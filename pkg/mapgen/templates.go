package mapgen

// Template - параметры местности.
type Template struct {
	Name        string
	Obstacles   float64 // доля случайно выключенных клеток
	Ridges      int
	RidgeLength int
	Lakes       int
	LakeRadius  int
}

// --- МЕСТНОСТЬ ---

var OpenField = Template{
	Name: "open",
}

var Scrubland = Template{
	Name:      "scrub",
	Obstacles: 0.12,
}

var Highlands = Template{
	Name:        "ridges",
	Obstacles:   0.04,
	Ridges:      3,
	RidgeLength: 7,
}

var Marsh = Template{
	Name:       "marsh",
	Obstacles:  0.05,
	Lakes:      2,
	LakeRadius: 1,
}

// Templates - реестр шаблонов по имени из конфига.
var Templates = map[string]Template{
	OpenField.Name: OpenField,
	Scrubland.Name: Scrubland,
	Highlands.Name: Highlands,
	Marsh.Name:     Marsh,
}

// Generate - полный конвейер по параметрам конфига.
func Generate(seed int64, width, height int, hexSize float64, template string, obstacles float64, spawns int) *MapBuilder {
	return NewMap(seed).
		WithSize(width, height).
		WithHexSize(hexSize).
		WithTemplate(template).
		Scatter(obstacles).
		PlaceSpawns(spawns)
}
