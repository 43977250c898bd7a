package galaxy

// Physical constants in SI units.
const (
	// G is the Newtonian gravitational constant (CODATA 2018), m^3 kg^-1 s^-2.
	G = 6.67430e-11

	Parsec     = 3.085677581491367e16
	Kiloparsec = 1e3 * Parsec

	// SolarMass in kg.
	SolarMass = 1.9891e30
)

// Sersic nu(n) approximation coefficients.
const (
	nuSlope     = 1.9992
	nuIntercept = 0.3271
)

// Nu returns the Sersic nu parameter for index n.
func Nu(n float64) float64 {
	return nuSlope*n - nuIntercept
}

// DensityFactor is the mass carried by a unit of normalized density:
// the solar mass times the initial number of stars.
func DensityFactor(solarMass, stars float64) float64 {
	return solarMass * stars
}
