package garden

import (
	"fmt"
	"strings"
)

// KnobRole is the meaning bound to a continuous controller.
type KnobRole string

const (
	MasterVolume     KnobRole = "master_volume"
	BackgroundVolume KnobRole = "background_volume"
	MelodyVolume     KnobRole = "melody_volume"
	Temperature      KnobRole = "temperature"
	Water            KnobRole = "water"
	TimeOfDay        KnobRole = "time_of_day"
	Seasons          KnobRole = "seasons"
)

// KnobRoles lists every role in the order knobs are assigned from a mapping.
var KnobRoles = []KnobRole{
	MasterVolume,
	BackgroundVolume,
	MelodyVolume,
	Temperature,
	Water,
	TimeOfDay,
	Seasons,
}

var knobDefaults = map[KnobRole]float64{
	MasterVolume:     0.8,
	BackgroundVolume: 0.8,
	MelodyVolume:     0.8,
	Temperature:      0.5,
	Water:            0.3,
	TimeOfDay:        0.5,
	Seasons:          0.5,
}

var knobAliases = map[string]KnobRole{
	"master":     MasterVolume,
	"volume":     MasterVolume,
	"background": BackgroundVolume,
	"melody":     MelodyVolume,
	"temp":       Temperature,
	"time":       TimeOfDay,
	"season":     Seasons,
}

// ParseKnobRole resolves a role name, accepting short aliases and any mix of
// case, spaces and dashes.
func ParseKnobRole(s string) (KnobRole, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	for _, role := range KnobRoles {
		if string(role) == s {
			return role, true
		}
	}
	role, ok := knobAliases[s]
	return role, ok
}

// affectsBackground reports whether a change to the role has to be applied
// to the background voices that are already playing.
func (r KnobRole) affectsBackground() bool {
	switch r {
	case MasterVolume, BackgroundVolume, TimeOfDay:
		return true
	}
	return false
}

func (r KnobRole) isVolume() bool {
	switch r {
	case MasterVolume, BackgroundVolume, MelodyVolume:
		return true
	}
	return false
}

// KnobValue maps a controller value to [0, 1].
func KnobValue(v int) float64 {
	if v < 0 {
		v = 0
	}
	if v > 127 {
		v = 127
	}
	return float64(v) / 127
}

// VelocityGain maps a velocity to [0.1, 0.8], so the softest hit is still
// audible and the hardest one stays safe.
func VelocityGain(velocity int) float64 {
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 127 {
		velocity = 127
	}
	return 0.1 + 0.7*float64(velocity)/127
}

// Brightness is the background gain modifier for the time of day: dim at
// dawn, full at dusk.
func Brightness(timeOfDay float64) float64 {
	return 0.6 + 0.4*timeOfDay
}

// Describe returns a short human label for a knob value.
func Describe(role KnobRole, value float64) string {
	if role.isVolume() {
		return fmt.Sprintf("%d%%", int(value*100+0.5))
	}
	switch role {
	case Temperature:
		return threeWay(value, "cold", "warm", "hot")
	case Water:
		return threeWay(value, "dry", "perfect", "flooding")
	case TimeOfDay:
		return threeWay(value, "dawn", "noon", "dusk")
	case Seasons:
		switch {
		case value < 0.25:
			return "winter"
		case value < 0.5:
			return "spring"
		case value < 0.75:
			return "summer"
		}
		return "autumn"
	}
	return fmt.Sprintf("%.2f", value)
}

func threeWay(v float64, low, mid, high string) string {
	switch {
	case v < 0.3:
		return low
	case v > 0.7:
		return high
	}
	return mid
}
