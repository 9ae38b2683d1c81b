package surface

// Fanout writes each LED to every setter and returns the first error
type Fanout []LEDSetter

func (f Fanout) SetLED(index int, r, g, b uint8) error {
	var first error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.SetLED(index, r, g, b); err != nil && first == nil {
			first = err
		}
	}
	return first
}
