package prefabs

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MusicFile is the prefab holding the cue table.
const MusicFile = "music.yaml"

var validate = validator.New()

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, errors.Wrapf(err, "prefabs: load %s", filename)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, errors.Wrapf(err, "prefabs: unmarshal %s", filename)
	}

	return spec, nil
}

// MusicSpec declares the cues a music player can switch between.
type MusicSpec struct {
	CrossFadeSeconds float64            `yaml:"crossfade_seconds" default:"2" validate:"gte=0"`
	SampleRate       int                `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	Initial          string             `yaml:"initial"`
	Script           string             `yaml:"script"`
	Params           map[string]float64 `yaml:"params"`
	Cues             []CueSpec          `yaml:"cues" validate:"required,min=1,unique=Name,dive"`
}

// CueSpec is one named track. File wins over Tone when both are set.
type CueSpec struct {
	Name string    `yaml:"name" validate:"required"`
	File string    `yaml:"file" validate:"required_without=Tone"`
	Tone *ToneSpec `yaml:"tone" validate:"required_without=File"`
	Loop bool      `yaml:"loop"`
}

// ToneSpec synthesizes a sine cue, used when no audio file is shipped.
type ToneSpec struct {
	Freq    float64 `yaml:"freq" validate:"gt=0"`
	Seconds float64 `yaml:"seconds" validate:"gt=0"`
}

// LoadMusicSpec reads the music prefab from disk or the embedded copy.
func LoadMusicSpec() (*MusicSpec, error) {
	spec, err := LoadSpec[MusicSpec](MusicFile)
	if err != nil {
		return nil, err
	}
	if err := spec.prepare(); err != nil {
		return nil, errors.Wrapf(err, "prefabs: %s", MusicFile)
	}
	return &spec, nil
}

// ParseMusicSpec decodes, defaults and validates a music prefab.
func ParseMusicSpec(data []byte) (*MusicSpec, error) {
	var spec MusicSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	if err := spec.prepare(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *MusicSpec) prepare() error {
	if err := defaults.Set(s); err != nil {
		return errors.Wrap(err, "set defaults")
	}
	return s.Validate()
}

func (s *MusicSpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	if s.Initial != "" {
		if _, ok := s.Cue(s.Initial); !ok {
			return errors.Newf("initial cue %q is not declared", s.Initial)
		}
	}
	return nil
}

// Cue returns the cue declared under name.
func (s *MusicSpec) Cue(name string) (CueSpec, bool) {
	for _, cue := range s.Cues {
		if cue.Name == name {
			return cue, true
		}
	}
	return CueSpec{}, false
}

// CueNames returns cue names in declaration order.
func (s *MusicSpec) CueNames() []string {
	names := make([]string, 0, len(s.Cues))
	for _, cue := range s.Cues {
		names = append(names, cue.Name)
	}
	return names
}
