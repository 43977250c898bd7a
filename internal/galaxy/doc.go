// Package galaxy provides the radial mass-density model of a disk galaxy.
//
// The model is the sum of two components:
//
//   - [Profile.Bulge]: a Sersic law exp(-nu*((r/Re)^(1/n) - 1))
//   - [Profile.Disk]: an exponential disk exp(-r/Rd)
//
// Each component is divided by its own maximum over the evaluated batch of
// radii and then weighted by its central density. The absolute scale of the
// output therefore depends on the batch: evaluate over a range that includes
// the peak (r close to 0) when absolute values matter.
//
// # Example
//
//	p, _ := galaxy.NewProfile(galaxy.DefaultParams())
//	r := galaxy.Sample(0.01*galaxy.Kiloparsec, 15*galaxy.Kiloparsec, 100)
//	rho := p.Total(r)
package galaxy
