package main

import (
	"fmt"
	"image"
	"image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/ChartEngine/src/config"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/panel"
	"github.com/iafilius/ChartEngine/src/query"
	"github.com/iafilius/ChartEngine/src/render"
)

// buildPanel builds the data of one configured panel.
func buildPanel(p config.PanelConfig, results []query.Result) (panel.Options, panel.Data, error) {
	opts, err := p.Options()
	if err != nil {
		return opts, panel.Data{}, err
	}
	sel, missing := p.Select(results)
	for _, name := range missing {
		logging.Warnf("[viewer] panel %s: query %q not found", p.ID, name)
	}
	d, err := panel.Build(opts, sel)
	return opts, d, err
}

// newControllers builds one controller per configured panel.
func newControllers(cfg *config.Config, results []query.Result, store panel.VisibilityStore, cache *heatmap.PaletteCache) ([]*panel.Controller, error) {
	out := make([]*panel.Controller, 0, len(cfg.Panels))
	for _, p := range cfg.Panels {
		opts, d, err := buildPanel(p, results)
		if err != nil {
			return nil, fmt.Errorf("panel %q: %w", p.ID, err)
		}
		out = append(out, panel.NewController(opts, d, store, cache))
	}
	return out, nil
}

// panelView is one panel card: the chart image, the legend toggles and an
// export button.
type panelView struct {
	ctrl   *panel.Controller
	size   render.Size
	img    *canvas.Image
	legend *fyne.Container
	window fyne.Window
	box    *fyne.Container
}

func newPanelView(ctrl *panel.Controller, size render.Size, w fyne.Window) *panelView {
	pv := &panelView{ctrl: ctrl, size: size, window: w}
	pv.img = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	pv.img.FillMode = canvas.ImageFillContain
	pv.img.SetMinSize(fyne.NewSize(float32(size.Width), float32(size.Height)))
	pv.legend = container.NewHBox()
	ctrl.OnChange(pv.redraw)

	title := widget.NewLabelWithStyle(ctrl.Options().Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	export := widget.NewButton("Export PNG…", pv.export)
	pv.box = container.NewVBox(
		container.NewBorder(nil, nil, title, export),
		pv.img,
		container.NewHScroll(pv.legend),
		widget.NewSeparator(),
	)
	pv.rebuildLegend()
	pv.redraw()
	return pv
}

// rebuildLegend creates one check box per series.
func (pv *panelView) rebuildLegend() {
	pv.legend.RemoveAll()
	for i, name := range pv.ctrl.Data().Names {
		series := i + 1
		chk := widget.NewCheck(name, nil)
		chk.SetChecked(pv.ctrl.Visible(series))
		chk.OnChanged = func(on bool) {
			pv.ctrl.SetVisible(series, on)
			// Stacked panels redraw from the write-back.
			if _, stacked := pv.ctrl.Stacked(); !stacked {
				pv.redraw()
			}
		}
		pv.legend.Add(chk)
	}
	pv.legend.Refresh()
}

// setData swaps in rebuilt data.
func (pv *panelView) setData(d panel.Data) {
	pv.ctrl.SetData(d)
	pv.rebuildLegend()
	if _, stacked := pv.ctrl.Stacked(); !stacked {
		pv.redraw()
	}
}

func (pv *panelView) redraw() {
	img, err := pv.ctrl.Render(pv.size)
	pv.img.Image = render.OrBlank(img, err, pv.size, pv.ctrl.Options().ID)
	pv.img.Refresh()
}

func (pv *panelView) export() {
	if pv.img.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", pv.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := png.Encode(wc, pv.img.Image); err != nil {
			dialog.ShowError(err, pv.window)
		}
	}, pv.window)
	fs.SetFileName(pv.ctrl.Options().ID + ".png")
	fs.Show()
}
