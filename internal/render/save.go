package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/pipeline"
	"gonum.org/v1/plot"
)

type figure struct {
	name  string
	build func() (*plot.Plot, error)
}

// Files lists the figures SaveAll writes, keyed by figure name.
type Files map[string]string

// SaveAll writes profile.png, density.png and, when the potential stage
// ran, potential.png into dir. With svg set, SVG copies are written too.
func SaveAll(dir string, res *pipeline.Result, svg bool) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	files := make(Files)

	figures := []figure{
		{"profile", func() (*plot.Plot, error) {
			return ProfilePlot(res.Curves, res.Config.Bulge.SersicIndex)
		}},
		{"density", func() (*plot.Plot, error) {
			return FieldPlot(res.Density, "Density Distribution Grid")
		}},
	}
	if res.HasPotential() {
		figures = append(figures, figure{"potential", func() (*plot.Plot, error) {
			return FieldPlot(res.Potential, "Gravitational Potential")
		}})
	}

	for _, fig := range figures {
		p, err := fig.build()
		if err != nil {
			return files, fmt.Errorf("%s: %w", fig.name, err)
		}
		path := filepath.Join(dir, fig.name+".png")
		if err := SavePNG(path, p); err != nil {
			return files, err
		}
		files[fig.name] = path
	}

	if svg {
		norm := res.Curves.Normalized()
		docs := map[string]string{
			"profile": ProfileSVG(norm.RadiiIn(galaxy.Kiloparsec), norm.Total, 600, 400, "#000000"),
			"density": FieldSVG(res.Density, 10),
		}
		if res.HasPotential() {
			docs["potential"] = FieldSVG(res.Potential, 10)
		}
		for name, doc := range docs {
			path := filepath.Join(dir, name+".svg")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				return files, fmt.Errorf("render: %w", err)
			}
			files[name+".svg"] = path
		}
	}
	return files, nil
}
