package component

// Director runs a music cue script each frame. Params are host-provided
// inputs exposed to the script, such as combat intensity.
type Director struct {
	ScriptPath string
	Params     map[string]float64
}

var DirectorComponent = NewComponent[Director]("director")
