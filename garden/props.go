package garden

import (
	"fmt"
	"sync/atomic"
)

// Props stores knob values that can be updated without locks. All
// properties should be registered before any reads take place.
type Props struct {
	roles      []KnobRole
	properties map[KnobRole]*atomic.Value
	setters    map[KnobRole]setter
}

func NewProps() *Props {
	return &Props{
		properties: make(map[KnobRole]*atomic.Value),
		setters:    make(map[KnobRole]setter),
	}
}

// newKnobProps registers every knob role at its default value.
func newKnobProps() *Props {
	p := NewProps()
	for _, role := range KnobRoles {
		p.MustRegister(role, setUnit, knobDefaults[role])
	}
	return p
}

// Set updates the property with value. The key has to be registered first using Register.
func (p *Props) Set(key KnobRole, value interface{}) error {
	prop, ok := p.properties[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	set, ok := p.setters[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	if err := set(value, prop); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

func (p *Props) Get(key KnobRole) (interface{}, error) {
	prop, ok := p.properties[key]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", key)
	}
	return prop.Load(), nil
}

// Float returns a registered float64 property, or 0 if it is unknown.
func (p *Props) Float(key KnobRole) float64 {
	v, err := p.Get(key)
	if err != nil {
		return 0
	}
	f, _ := v.(float64)
	return f
}

// Register adds a new property.
func (p *Props) Register(key KnobRole, set setter, init interface{}) (*atomic.Value, error) {
	var prop atomic.Value
	if _, ok := p.properties[key]; !ok {
		p.roles = append(p.roles, key)
	}
	p.properties[key] = &prop
	p.setters[key] = set
	return &prop, set(init, &prop)
}

func (p *Props) MustRegister(key KnobRole, set setter, init interface{}) *atomic.Value {
	if prop, err := p.Register(key, set, init); err != nil {
		panic(err)
	} else {
		return prop
	}
}

// State returns a copy of all float64 properties.
func (p *Props) State() KnobState {
	state := make(KnobState, len(p.roles))
	for _, role := range p.roles {
		state[role] = p.Float(role)
	}
	return state
}

type setter func(val interface{}, dest *atomic.Value) error

var setUnit = setFloat64(0, 1)

func setFloat64(min, max float64) setter {
	return func(v interface{}, dest *atomic.Value) error {
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		default:
			return fmt.Errorf("value is not a float64: %v", v)
		}
		if f < min || f > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, f)
		}
		dest.Store(f)
		return nil
	}
}
