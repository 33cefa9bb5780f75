// Package progress holds the fixed renovation stage table and the
// arithmetic derived from it.
package progress

// Stage is one step of the renovation sequence.
type Stage struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

const (
	Planning = "Planning"
	Demo     = "Demo"
	RoughIn  = "Rough-In"
	Finishes = "Finishes"
	Complete = "Complete"
)

var stages = [...]Stage{
	{Key: Planning, Label: "Planning", Order: 0},
	{Key: Demo, Label: "Demolition", Order: 1},
	{Key: RoughIn, Label: "Rough-In", Order: 2},
	{Key: Finishes, Label: "Finishes", Order: 3},
	{Key: Complete, Label: "Complete", Order: 4},
}

// indexOf returns the position of key in the table, or -1.
func indexOf(key string) int {
	for i, s := range stages {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// Count returns the number of stages.
func Count() int {
	return len(stages)
}

// FirstKey returns the key of the earliest stage.
func FirstKey() string {
	return stages[0].Key
}

// LastKey returns the key of the final stage.
func LastKey() string {
	return stages[len(stages)-1].Key
}

// IsValid reports whether key names a known stage.
func IsValid(key string) bool {
	return indexOf(key) >= 0
}

// Info returns the stage for key. Unknown keys resolve to the first stage.
func Info(key string) Stage {
	if i := indexOf(key); i >= 0 {
		return stages[i]
	}
	return stages[0]
}

// Percent returns the linear progress for key in [0,100].
// Unknown keys give 0, unlike Info which falls back to the first stage.
func Percent(key string) float64 {
	i := indexOf(key)
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(stages)) * 100
}

// Next returns the stage after key. ok is false for the last stage and
// for unknown keys.
func Next(key string) (Stage, bool) {
	i := indexOf(key)
	if i < 0 || i >= len(stages)-1 {
		return Stage{}, false
	}
	return stages[i+1], true
}

// Previous returns the stage before key. ok is false for the first stage
// and for unknown keys.
func Previous(key string) (Stage, bool) {
	i := indexOf(key)
	if i <= 0 {
		return Stage{}, false
	}
	return stages[i-1], true
}

// Keys returns the stage keys in order. The slice is a fresh copy.
func Keys() []string {
	keys := make([]string, len(stages))
	for i, s := range stages {
		keys[i] = s.Key
	}
	return keys
}

// All returns the stage table in order. The slice is a fresh copy.
func All() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages[:])
	return out
}

// View is the derived stage state shown alongside a project.
type View struct {
	Current  Stage   `json:"current"`
	Percent  float64 `json:"progressPercent"`
	Next     *Stage  `json:"nextStage"`
	Previous *Stage  `json:"previousStage"`
}

// Describe bundles Info, Percent, Next and Previous for key.
func Describe(key string) View {
	v := View{
		Current: Info(key),
		Percent: Percent(key),
	}
	if next, ok := Next(key); ok {
		v.Next = &next
	}
	if prev, ok := Previous(key); ok {
		v.Previous = &prev
	}
	return v
}
