package iconset

// Kind tags an entry of an icon set.
type Kind string

const (
	KindIcon      Kind = "icon"
	KindVariation Kind = "variation"
	KindAlias     Kind = "alias"
)

// Default icon dimensions used when neither the icon nor the set defines them.
const (
	DefaultWidth  = 16.0
	DefaultHeight = 16.0
)

// Info is the descriptive block of an icon set.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// Transform is the rotation and flip applied when rendering.
type Transform struct {
	Rotate int  `json:"rotate,omitempty"`
	HFlip  bool `json:"hFlip,omitempty"`
	VFlip  bool `json:"vFlip,omitempty"`
}

// Merge composes t with a child transformation: rotations add up and flips
// toggle.
func (t Transform) Merge(child Transform) Transform {
	return Transform{
		Rotate: (t.Rotate + child.Rotate) % 4,
		HFlip:  t.HFlip != child.HFlip,
		VFlip:  t.VFlip != child.VFlip,
	}
}

// Icon is a renderable icon definition with resolved dimensions.
type Icon struct {
	Body      string
	Left      float64
	Top       float64
	Width     float64
	Height    float64
	Transform Transform
	Hidden    bool
}

// Alias points to a parent entry, optionally overriding dimensions and
// adding a transformation.
type Alias struct {
	Parent    string
	Left      *float64
	Top       *float64
	Width     *float64
	Height    *float64
	Transform Transform
}

// Entry is one named item of an icon set.
type Entry struct {
	Name  string
	Kind  Kind
	Icon  *Icon
	Alias *Alias
}

// rawIcon mirrors an icon object of the iconify JSON format.
type rawIcon struct {
	Body   string   `json:"body"`
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Rotate int      `json:"rotate,omitempty"`
	HFlip  bool     `json:"hFlip,omitempty"`
	VFlip  bool     `json:"vFlip,omitempty"`
	Hidden bool     `json:"hidden,omitempty"`
}

type rawAlias struct {
	Parent string   `json:"parent"`
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Rotate int      `json:"rotate,omitempty"`
	HFlip  bool     `json:"hFlip,omitempty"`
	VFlip  bool     `json:"vFlip,omitempty"`
}

// rawDefaults are the set-level dimensions inherited by icons.
type rawDefaults struct {
	Left   float64
	Top    float64
	Width  *float64
	Height *float64
}
