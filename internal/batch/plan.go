package batch

import (
	"github.com/ironsheep/deepzoom-tiler/internal/config"
	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// TargetPlan is the predicted output of one target.
type TargetPlan struct {
	Target Target              `json:"target"`
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Levels []pyramid.LevelPlan `json:"levels"`
	Tiles  int                 `json:"tiles"`
}

// Plan decodes each target's inputs and reports the pyramid it would produce
// without writing anything. Tile counts for targets with overlays are upper
// bounds, since empty tiles above the canvas resolution are skipped.
func (r *Runner) Plan(jobs []config.Job) ([]TargetPlan, error) {
	var plans []TargetPlan
	for _, job := range jobs {
		for _, t := range Targets(job) {
			p, err := r.planTarget(t)
			if err != nil {
				return nil, err
			}
			plans = append(plans, p)
		}
	}
	return plans, nil
}

func (r *Runner) planTarget(t Target) (TargetPlan, error) {
	format, err := raster.ParseFormat(t.Job.Format)
	if err != nil {
		return TargetPlan{}, err
	}
	cache, err := r.cache(t.Job.EngineSettings())
	if err != nil {
		return TargetPlan{}, err
	}
	canvas, err := r.canvas(cache, t, format)
	if err != nil {
		return TargetPlan{}, err
	}
	w, h := canvas.Dimensions(pyramid.Total)
	levels, err := pyramid.Plan(w, h, canvas.TileSize(), canvas.Overlap())
	if err != nil {
		return TargetPlan{}, err
	}
	return TargetPlan{
		Target: t,
		Width:  w,
		Height: h,
		Levels: levels,
		Tiles:  pyramid.TotalTiles(levels),
	}, nil
}
