package engine

// Launcher is the spring at the bottom of the launch channel. Holding it
// charges linearly up to MaxChargeTime.
type Launcher struct {
	Position      Vec2    `json:"position"`
	ChargeArea    Rect    `json:"charge_area"`
	ChargeTime    float64 `json:"charge_time"`
	MaxChargeTime float64 `json:"max_charge_time"`
	Charging      bool    `json:"charging"`
}

const (
	chargeAreaWidth  = 80
	chargeAreaHeight = 40
	defaultMaxCharge = 2.0
)

// NewLauncher creates a launcher whose charge hitbox is centred on pos
func NewLauncher(pos Vec2) Launcher {
	return Launcher{
		Position: pos,
		ChargeArea: Rect{
			X:      pos.X - chargeAreaWidth/2,
			Y:      pos.Y - chargeAreaHeight/2,
			Width:  chargeAreaWidth,
			Height: chargeAreaHeight,
		},
		MaxChargeTime: defaultMaxCharge,
	}
}

// StartCharging begins a new charge from zero
func (l *Launcher) StartCharging() {
	l.Charging = true
	l.ChargeTime = 0
}

// UpdateCharge advances the charge while charging, clamped to MaxChargeTime
func (l *Launcher) UpdateCharge(dt float64) {
	if !l.Charging {
		return
	}
	l.ChargeTime += dt
	if l.ChargeTime > l.MaxChargeTime {
		l.ChargeTime = l.MaxChargeTime
	}
}

// ChargePower returns the charge as a fraction in [0, 1]
func (l *Launcher) ChargePower() float64 {
	if l.MaxChargeTime <= 0 {
		return 0
	}
	return l.ChargeTime / l.MaxChargeTime
}

// ReleaseCharge ends the charge and returns the launch power it maps to
func (l *Launcher) ReleaseCharge(maxPower float64) float64 {
	power := l.ChargePower() * maxPower
	l.Reset()
	return power
}

func (l *Launcher) Reset() {
	l.Charging = false
	l.ChargeTime = 0
}
