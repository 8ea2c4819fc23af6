// Command panelviewer shows dashboard panels in a desktop window. Legend
// check boxes hide and show series; hidden series are remembered.
package main

import (
	"fmt"
	"image/color"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/pflag"

	"github.com/iafilius/ChartEngine/src/config"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/query"
	"github.com/iafilius/ChartEngine/src/render"
)

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

type viewer struct {
	app      fyne.App
	window   fyne.Window
	cfg      *config.Config
	palettes *heatmap.PaletteCache
	views    []*panelView
	column   *fyne.Container
	label    *widget.Label
}

func main() {
	flags := pflag.NewFlagSet("panelviewer", pflag.ExitOnError)
	cfgFile := flags.String("config", "", "dashboard file (default: ./chartengine.yaml)")
	flags.String("input", config.DefaultInput, "query results (.json document or .jsonl)")
	flags.String("log-level", config.DefaultLogLevel, "debug|info|warn|error")
	flags.Int("width", 1000, "chart width in pixels")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(*cfgFile, flags)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogLevel(cfg.LogLevel)

	a := app.NewWithID("com.chartengine.viewer")
	a.Settings().SetTheme(&darkTheme{})
	title := cfg.Title
	if title == "" {
		title = "Panel Viewer"
	}
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1100, 800))

	v := &viewer{
		app:      a,
		window:   w,
		cfg:      cfg,
		palettes: heatmap.NewPaletteCache(),
		column:   container.NewVBox(),
		label:    widget.NewLabel(truncatePath(cfg.Input, 60)),
	}
	top := container.NewHBox(
		widget.NewButton("Open…", v.openFileDialog),
		widget.NewButton("Reload", v.reload),
		v.label,
	)
	w.SetContent(container.NewBorder(top, nil, nil, nil, container.NewVScroll(v.column)))
	v.buildMenus()
	v.load()
	w.ShowAndRun()
}

func (v *viewer) buildMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", v.openFileDialog),
		fyne.NewMenuItem("Reload", v.reload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show All Series", v.showAll),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { v.window.Close() }),
	)
	v.window.SetMainMenu(fyne.NewMainMenu(fileMenu))
}

func (v *viewer) size() render.Size {
	if v.cfg.Height <= 0 {
		return render.ChartDimensions(v.cfg.Width)
	}
	return render.Size{Width: v.cfg.Width, Height: v.cfg.Height}
}

// load reads the results file and builds the panel column from scratch.
func (v *viewer) load() {
	results, err := query.Load(v.cfg.Input)
	if err != nil {
		dialog.ShowError(err, v.window)
		return
	}
	ctrls, err := newControllers(v.cfg, results, prefsStore{prefs: v.app.Preferences()}, v.palettes)
	if err != nil {
		dialog.ShowError(err, v.window)
		return
	}
	v.column.RemoveAll()
	v.views = v.views[:0]
	for _, c := range ctrls {
		pv := newPanelView(c, v.size(), v.window)
		v.views = append(v.views, pv)
		v.column.Add(pv.box)
	}
	v.column.Refresh()
	logging.Infof("[viewer] %d panels from %s", len(v.views), v.cfg.Input)
}

// reload rebuilds panel data in place, keeping the controllers.
func (v *viewer) reload() {
	if len(v.views) == 0 {
		v.load()
		return
	}
	results, err := query.Load(v.cfg.Input)
	if err != nil {
		dialog.ShowError(err, v.window)
		return
	}
	for i, p := range v.cfg.Panels {
		if i >= len(v.views) {
			break
		}
		_, d, err := buildPanel(p, results)
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		v.views[i].setData(d)
	}
}

func (v *viewer) showAll() {
	for _, pv := range v.views {
		for i := range pv.ctrl.Data().Names {
			pv.ctrl.SetVisible(i+1, true)
		}
		pv.rebuildLegend()
		pv.redraw()
	}
}

func (v *viewer) openFileDialog() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		v.cfg.Input = rc.URI().Path()
		v.label.SetText(truncatePath(v.cfg.Input, 60))
		v.load()
	}, v.window)
	d.Show()
}
