package pipeline_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galpot/internal/config"
	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/grid"
	"github.com/san-kum/galpot/internal/pipeline"
	"github.com/san-kum/galpot/internal/potential"
	"gonum.org/v1/gonum/spatial/r2"
)

// failing always returns its error.
type failing struct{ err error }

func (f failing) Name() string { return "failing" }
func (f failing) Potential(context.Context, []float64, []r2.Vec, []r2.Vec) ([]float64, error) {
	return nil, f.err
}

func bits(v []float64) []uint64 {
	out := make([]uint64, len(v))
	for i, x := range v {
		out[i] = math.Float64bits(x)
	}
	return out
}

var _ = Describe("Pipeline", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with the density preset", func() {
		var res *pipeline.Result

		BeforeEach(func() {
			p, err := pipeline.New(config.GetPreset("density"))
			Expect(err).NotTo(HaveOccurred())
			res, err = p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("builds a 30x30 density map over 900 points", func() {
			Expect(res.Grid.Len()).To(Equal(900))
			Expect(res.Density.Rows).To(Equal(30))
			Expect(res.Density.Cols).To(Equal(30))
			Expect(res.Density.Data).To(HaveLen(900))
		})

		It("weights the normalized density by the initial mass factor", func() {
			factor := res.Config.DensityFactor()
			Expect(factor).To(BeNumerically("~", 9.9455e42, 1e30))
			// the batch maximum of the total profile is bulge 1 + disk 0.1
			Expect(res.Density.Max()).To(BeNumerically("~", 1.1*factor, 1e-9*factor))
			Expect(res.Density.Min()).To(BeNumerically(">", 0))
		})

		It("samples the profile over 100 radii", func() {
			Expect(res.Curves.Len()).To(Equal(100))
			Expect(res.Nu).To(Equal(galaxy.Nu(res.Config.Bulge.SersicIndex)))
			Expect(res.Curves.Total[0]).To(Equal(res.Curves.Bulge[0] + res.Curves.Disk[0]))
		})

		It("skips the potential stage", func() {
			Expect(res.HasPotential()).To(BeFalse())
			Expect(res.Masses).To(BeNil())
			Expect(res.Timings).NotTo(HaveKey("potential"))
		})
	})

	Context("with the potential stage enabled", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = config.DefaultConfig()
			cfg.Potential.Enabled = true
		})

		It("computes a negative potential on every grid point", func() {
			p, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			res, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.HasPotential()).To(BeTrue())
			Expect(res.Method).To(Equal(potential.MethodDirect))
			Expect(res.Masses).To(HaveLen(900))
			Expect(res.Potential.Max()).To(BeNumerically("<", 0))
		})

		It("derives point masses as density map / upscale factor", func() {
			p, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			res, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			for i, m := range res.Masses {
				Expect(m).To(BeNumerically("~", res.Density.Data[i]/30, 1e-12*res.Density.Data[i]))
			}
		})

		It("is bit-identical across runs and worker counts", func() {
			p, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			a, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			par := cfg.Clone()
			par.Potential.Workers = 4
			q, err := pipeline.New(par)
			Expect(err).NotTo(HaveOccurred())
			b, err := q.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(bits(b.Curves.Total)).To(Equal(bits(a.Curves.Total)))
			Expect(bits(b.Density.Data)).To(Equal(bits(a.Density.Data)))
			Expect(bits(b.Potential.Data)).To(Equal(bits(a.Potential.Data)))
		})

		It("agrees with the Barnes-Hut approximation", func() {
			p, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			exact, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			bh := cfg.Clone()
			bh.Potential.Method = potential.MethodBarnesHut
			q, err := pipeline.New(bh)
			Expect(err).NotTo(HaveOccurred())
			approx, err := q.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(approx.Method).To(Equal(potential.MethodBarnesHut))
			for i, v := range exact.Potential.Data {
				Expect(approx.Potential.Data[i]).To(BeNumerically("~", v, 0.05*math.Abs(v)))
			}
		})

		It("matches the FFT convolution", func() {
			p, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			exact, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			conv := cfg.Clone()
			conv.Potential.Method = potential.MethodFFT
			q, err := pipeline.New(conv)
			Expect(err).NotTo(HaveOccurred())
			res, err := q.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Method).To(Equal(potential.MethodFFT))
			for i, v := range exact.Potential.Data {
				Expect(res.Potential.Data[i]).To(BeNumerically("~", v, 1e-9*math.Abs(v)))
			}
		})

		It("wraps evaluator failures with the stage name", func() {
			boom := errors.New("boom")
			p, err := pipeline.New(cfg, pipeline.WithEvaluator(failing{err: boom}))
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Run(ctx)
			Expect(err).To(MatchError(boom))
			Expect(err.Error()).To(HavePrefix("potential:"))
		})

		It("stops on a canceled context", func() {
			p, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err = p.Run(canceled)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	It("rejects an invalid configuration", func() {
		cfg := config.DefaultConfig()
		cfg.Grid.UpscaleFactor = 0
		_, err := pipeline.New(cfg)
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("copies the configuration it is given", func() {
		cfg := config.DefaultConfig()
		p, err := pipeline.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		cfg.Grid.UpscaleFactor = 4
		res, err := p.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Grid.Resolution).To(Equal(30))
	})

	It("keeps the grid and profile consistent with the standalone packages", func() {
		cfg := config.DefaultConfig()
		p, err := pipeline.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := p.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		g, err := grid.New(15, 30, galaxy.Kiloparsec)
		Expect(err).NotTo(HaveOccurred())
		prof, err := galaxy.NewProfile(cfg.ProfileParams())
		Expect(err).NotTo(HaveOccurred())
		want, err := g.DensityMap(prof, cfg.DensityFactor())
		Expect(err).NotTo(HaveOccurred())

		Expect(bits(res.Density.Data)).To(Equal(bits(want.Data)))
	})
})
