package plume

import (
	"fmt"

	"github.com/wrplume/plumesim/internal/dual"
)

// Params holds every recognized physical and imaging parameter for one
// star system. All fields are plain float64 so a caller can copy the
// struct by value, shift one field (per-epoch phase offsets, prior
// samples) and hand the copy to Simulate. Fields not used by a given
// model variant are simply left at their zero value.
//
// Angle conventions: orbital elements, turn-on/off anomalies and
// companion directions are in degrees; turn-on/off live in [-180, 180).
type Params struct {
	// Binary orbit.
	M1           float64 `toml:"m1"`           // primary mass, solar masses
	M2           float64 `toml:"m2"`           // secondary mass, solar masses
	Eccentricity float64 `toml:"eccentricity"` // in [0, 1)
	Inclination  float64 `toml:"inclination"`  // degrees
	AscNode      float64 `toml:"asc_node"`     // longitude of ascending node, degrees
	ArgPeri      float64 `toml:"arg_peri"`     // argument of periapsis, degrees
	Period       float64 `toml:"period"`       // years
	Distance     float64 `toml:"distance"`     // parsecs
	Phase        float64 `toml:"phase"`        // orbital phase; only the fractional part matters

	// Winds.
	WindSpeed1    float64 `toml:"windspeed1"`     // primary wind speed, km/s
	WindSpeed2    float64 `toml:"windspeed2"`     // secondary wind speed, km/s
	TermWindSpeed float64 `toml:"term_windspeed"` // terminal plume speed, km/s
	AccelRate     float64 `toml:"accel_rate"`     // log10 of the acceleration rate, 1/yr

	// Plume cone.
	OpenAngle      float64 `toml:"open_angle"`       // full opening angle at the equator, degrees
	OpenAnglePolar float64 `toml:"open_angle_polar"` // full opening angle at the pole, degrees
	WindSpeedPolar float64 `toml:"windspeed_polar"`  // wind speed at the pole, km/s

	// Wind anisotropy (tanh latitude transition).
	AnisoVelMult  float64 `toml:"aniso_vel_mult"` // log10 steepness, velocity curve
	AnisoVelPower float64 `toml:"aniso_vel_power"`
	AnisoOAMult   float64 `toml:"aniso_oa_mult"` // log10 steepness, opening-angle curve
	AnisoOAPower  float64 `toml:"aniso_oa_power"`
	SpinInc       float64 `toml:"spin_inc"`   // spin-pole inclination, degrees
	SpinOmega     float64 `toml:"spin_omega"` // spin-pole azimuth, degrees

	// Dust production window.
	TurnOn      float64 `toml:"turn_on"`      // true anomaly, degrees, in [-180, 180)
	TurnOff     float64 `toml:"turn_off"`     // true anomaly, degrees, in [-180, 180)
	GradualTurn float64 `toml:"gradual_turn"` // soft-edge width, degrees
	NucDist     float64 `toml:"nuc_dist"`     // nucleation distance, AU

	// Orbital brightness modulation (whole rings).
	OrbAmp float64 `toml:"orb_amp"`
	OrbMin float64 `toml:"orb_min"` // degrees
	OrbSD  float64 `toml:"orb_sd"`  // degrees; >= 1 disables

	// Azimuthal brightness modulation (within a ring).
	AzAmp float64 `toml:"az_amp"`
	AzMin float64 `toml:"az_min"` // degrees
	AzSD  float64 `toml:"az_sd"`  // degrees; >= 1 disables

	// Tertiary companion photodissociation.
	CompIncl      float64 `toml:"comp_incl"` // degrees
	CompAz        float64 `toml:"comp_az"`   // degrees
	CompOpen      float64 `toml:"comp_open"` // full cone angle, degrees
	CompReduction float64 `toml:"comp_reduction"`
	Star3Dist     float64 `toml:"star3dist"` // companion distance, AU

	// Star sprites for image overlay; spreads are log10 arcsec.
	Star1Amp float64 `toml:"star1amp"`
	Star1SD  float64 `toml:"star1sd"`
	Star2Amp float64 `toml:"star2amp"`
	Star2SD  float64 `toml:"star2sd"`
	Star3Amp float64 `toml:"star3amp"`
	Star3SD  float64 `toml:"star3sd"`

	// Imaging.
	Histmax  float64 `toml:"histmax"`   // clip ceiling as a fraction of the max
	LumPower float64 `toml:"lum_power"` // luminosity stretch exponent
	Sigma    float64 `toml:"sigma"`     // PSF blur sigma, pixels
}

// Validate reports caller-contract violations. The physical model is
// undefined outside these ranges, so they are errors rather than clamps.
func (p Params) Validate() error {
	if p.Eccentricity < 0 || p.Eccentricity >= 1 {
		return fmt.Errorf("eccentricity %g outside [0, 1)", p.Eccentricity)
	}
	if p.Period <= 0 {
		return fmt.Errorf("period %g must be positive", p.Period)
	}
	if p.Distance <= 0 {
		return fmt.Errorf("distance %g must be positive", p.Distance)
	}
	if p.M1 <= 0 || p.M2 <= 0 {
		return fmt.Errorf("masses (%g, %g) must be positive", p.M1, p.M2)
	}
	if p.WindSpeed1 <= 0 {
		return fmt.Errorf("windspeed1 %g must be positive", p.WindSpeed1)
	}
	if p.TurnOn >= p.TurnOff {
		return fmt.Errorf("turn_on %g must be less than turn_off %g", p.TurnOn, p.TurnOff)
	}
	if p.TurnOn < -180 || p.TurnOff >= 180 {
		return fmt.Errorf("turn_on/turn_off (%g, %g) outside [-180, 180)", p.TurnOn, p.TurnOff)
	}
	if p.OpenAngle <= 0 {
		return fmt.Errorf("open_angle %g must be positive", p.OpenAngle)
	}
	return nil
}

// DualParams mirrors Params with dual numbers, one field seeded as the
// differentiation variable.
type DualParams struct {
	M1, M2, Eccentricity, Inclination, AscNode, ArgPeri dual.Num
	Period, Distance, Phase                             dual.Num

	WindSpeed1, WindSpeed2, TermWindSpeed, AccelRate dual.Num

	OpenAngle, OpenAnglePolar, WindSpeedPolar dual.Num

	AnisoVelMult, AnisoVelPower, AnisoOAMult, AnisoOAPower dual.Num
	SpinInc, SpinOmega                                     dual.Num

	TurnOn, TurnOff, GradualTurn, NucDist dual.Num

	OrbAmp, OrbMin, OrbSD dual.Num
	AzAmp, AzMin, AzSD    dual.Num

	CompIncl, CompAz, CompOpen, CompReduction, Star3Dist dual.Num

	Star1Amp, Star1SD, Star2Amp, Star2SD, Star3Amp, Star3SD dual.Num

	Histmax, LumPower, Sigma dual.Num
}

type lifter struct {
	wrt   string
	found bool
}

func (l *lifter) f(v float64, name string) dual.Num {
	if name == l.wrt {
		l.found = true
		return dual.Var(v)
	}
	return dual.Con(v)
}

// Lift converts Params to DualParams, seeding the named parameter as the
// differentiation variable. An empty name lifts everything as constants.
// The names are the TOML keys.
func Lift(p Params, wrt string) (*DualParams, error) {
	l := lifter{wrt: wrt}
	d := &DualParams{
		M1:           l.f(p.M1, "m1"),
		M2:           l.f(p.M2, "m2"),
		Eccentricity: l.f(p.Eccentricity, "eccentricity"),
		Inclination:  l.f(p.Inclination, "inclination"),
		AscNode:      l.f(p.AscNode, "asc_node"),
		ArgPeri:      l.f(p.ArgPeri, "arg_peri"),
		Period:       l.f(p.Period, "period"),
		Distance:     l.f(p.Distance, "distance"),
		Phase:        l.f(p.Phase, "phase"),

		WindSpeed1:    l.f(p.WindSpeed1, "windspeed1"),
		WindSpeed2:    l.f(p.WindSpeed2, "windspeed2"),
		TermWindSpeed: l.f(p.TermWindSpeed, "term_windspeed"),
		AccelRate:     l.f(p.AccelRate, "accel_rate"),

		OpenAngle:      l.f(p.OpenAngle, "open_angle"),
		OpenAnglePolar: l.f(p.OpenAnglePolar, "open_angle_polar"),
		WindSpeedPolar: l.f(p.WindSpeedPolar, "windspeed_polar"),

		AnisoVelMult:  l.f(p.AnisoVelMult, "aniso_vel_mult"),
		AnisoVelPower: l.f(p.AnisoVelPower, "aniso_vel_power"),
		AnisoOAMult:   l.f(p.AnisoOAMult, "aniso_oa_mult"),
		AnisoOAPower:  l.f(p.AnisoOAPower, "aniso_oa_power"),
		SpinInc:       l.f(p.SpinInc, "spin_inc"),
		SpinOmega:     l.f(p.SpinOmega, "spin_omega"),

		TurnOn:      l.f(p.TurnOn, "turn_on"),
		TurnOff:     l.f(p.TurnOff, "turn_off"),
		GradualTurn: l.f(p.GradualTurn, "gradual_turn"),
		NucDist:     l.f(p.NucDist, "nuc_dist"),

		OrbAmp: l.f(p.OrbAmp, "orb_amp"),
		OrbMin: l.f(p.OrbMin, "orb_min"),
		OrbSD:  l.f(p.OrbSD, "orb_sd"),
		AzAmp:  l.f(p.AzAmp, "az_amp"),
		AzMin:  l.f(p.AzMin, "az_min"),
		AzSD:   l.f(p.AzSD, "az_sd"),

		CompIncl:      l.f(p.CompIncl, "comp_incl"),
		CompAz:        l.f(p.CompAz, "comp_az"),
		CompOpen:      l.f(p.CompOpen, "comp_open"),
		CompReduction: l.f(p.CompReduction, "comp_reduction"),
		Star3Dist:     l.f(p.Star3Dist, "star3dist"),

		Star1Amp: l.f(p.Star1Amp, "star1amp"),
		Star1SD:  l.f(p.Star1SD, "star1sd"),
		Star2Amp: l.f(p.Star2Amp, "star2amp"),
		Star2SD:  l.f(p.Star2SD, "star2sd"),
		Star3Amp: l.f(p.Star3Amp, "star3amp"),
		Star3SD:  l.f(p.Star3SD, "star3sd"),

		Histmax:  l.f(p.Histmax, "histmax"),
		LumPower: l.f(p.LumPower, "lum_power"),
		Sigma:    l.f(p.Sigma, "sigma"),
	}
	if l.wrt != "" && !l.found {
		return nil, fmt.Errorf("unknown parameter %q", l.wrt)
	}
	return d, nil
}
