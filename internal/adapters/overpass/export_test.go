package overpass

import "time"

// SetClock replaces the provider's time source.
func (p *Provider) SetClock(now func() time.Time) { p.now = now }
