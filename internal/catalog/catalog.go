// Package catalog holds baseline parameter sets for well-studied
// colliding-wind binaries, drawn from published orbital and plume
// solutions. They are starting points for fitting, not fixed truths.
package catalog

import (
	"sort"
	"strings"

	"github.com/wrplume/plumesim/internal/plume"
)

var systems = map[string]plume.Params{
	// Apep: the slow-wind WR+WR pinwheel at the Galactic center distance
	// scale, with a wide dust cone and a tertiary O star.
	"apep": {
		M1: 15, M2: 10,
		Eccentricity: 0.7,
		Inclination:  25, AscNode: 164, ArgPeri: 11,
		Period: 125, Distance: 2400, Phase: 0.6,
		WindSpeed1: 860, WindSpeed2: 2100, TermWindSpeed: 860,
		WindSpeedPolar: 860, AccelRate: -2,
		OpenAngle: 125, OpenAnglePolar: 125,
		AnisoVelPower: 1, AnisoOAPower: 1,
		TurnOn:    -114, TurnOff: 150, GradualTurn: 10,
		CompIncl: 120, CompAz: -90, CompOpen: 70,
		CompReduction: 0, Star3Dist: 1700,
		Star1Amp: 0, Star1SD: -1.5,
		Star2Amp: 0, Star2SD: -1.5,
		Star3Amp: 0, Star3SD: -1.5,
		Histmax: 1, LumPower: 1, Sigma: 3,
	},

	// WR 104: the archetypal pinwheel nebula, near-circular and close to
	// face-on, one dust turn per 241-day orbit.
	"wr104": {
		M1: 10, M2: 20,
		Eccentricity: 0.06,
		Inclination:  15, AscNode: 0, ArgPeri: 0,
		Period: 0.662, Distance: 2580, Phase: 0.5,
		WindSpeed1: 1220, WindSpeed2: 2000, TermWindSpeed: 1220,
		WindSpeedPolar: 1220, AccelRate: -1,
		OpenAngle: 80, OpenAnglePolar: 80,
		AnisoVelPower: 1, AnisoOAPower: 1,
		TurnOn:    -179, TurnOff: 179, GradualTurn: 2,
		Histmax: 1, LumPower: 1, Sigma: 2,
	},

	// WR 112: a heavily dust-enshrouded WC9 binary with a long period
	// and persistent dust production.
	"wr112": {
		M1: 13, M2: 20,
		Eccentricity: 0.1,
		Inclination:  100, AscNode: 75, ArgPeri: 170,
		Period: 19, Distance: 3400, Phase: 0.4,
		WindSpeed1: 1230, WindSpeed2: 2000, TermWindSpeed: 1230,
		WindSpeedPolar: 1230, AccelRate: -1.5,
		OpenAngle: 110, OpenAnglePolar: 110,
		AnisoVelPower: 1, AnisoOAPower: 1,
		TurnOn:    -179, TurnOff: 179, GradualTurn: 5,
		Histmax: 1, LumPower: 1, Sigma: 2,
	},

	// WR 140: the canonical episodic dust maker, highly eccentric with
	// dust produced only around periastron passage.
	"wr140": {
		M1: 10, M2: 29,
		Eccentricity: 0.896,
		Inclination:  119, AscNode: 275, ArgPeri: 47,
		Period: 7.93, Distance: 1640, Phase: 0.8,
		WindSpeed1: 2860, WindSpeed2: 3100, TermWindSpeed: 2860,
		WindSpeedPolar: 2860, AccelRate: -1,
		OpenAngle: 80, OpenAnglePolar: 80,
		AnisoVelPower: 1, AnisoOAPower: 1,
		TurnOn:    -135, TurnOff: 135, GradualTurn: 20,
		Histmax: 1, LumPower: 1, Sigma: 2,
	},
}

// Lookup returns the baseline parameters for a named system. Names are
// case-insensitive.
func Lookup(name string) (plume.Params, bool) {
	p, ok := systems[strings.ToLower(name)]
	return p, ok
}

// Names returns the known system names, sorted.
func Names() []string {
	out := make([]string, 0, len(systems))
	for k := range systems {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
