package collect

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"acss/common"
	"acss/css"
	"acss/manifest"
	"acss/misc"
)

// LayerPrefix names cascade layers in layers specificity mode, layer name is
// prefix followed by rule priority.
const LayerPrefix = "priority"

// Options controls stylesheet rendering.
type Options struct {
	Specificity common.Specificity
	// Header is a text/template (with slim-sprig functions) expanded with
	// HeaderValues, empty means no header.
	Header string
}

// HeaderValues is available for header template expansion.
type HeaderValues struct {
	App     string
	Version string
	Modules []string
	Rules   int
	Layers  []string
}

// Collector renders tree-shaken stylesheets.
type Collector struct {
	opts Options
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{opts: opts, log: log.Named("collect")}
}

// Stylesheet collects used artifacts of the manifest and renders them.
func (c *Collector) Stylesheet(m *manifest.Manifest, u *manifest.Usage) (*css.Stylesheet, error) {
	entries := Collect(m, u)
	sheet, err := c.Render(entries)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Stylesheet collected",
		zap.Int("artifacts", len(m.Artifacts())),
		zap.Int("used", u.Len()),
		zap.Int("entries", len(entries)),
		zap.Int("layers", len(sheet.Layers())))
	return sheet, nil
}

// Render turns entries into stylesheet. Non atomic entries are never layered,
// in layers mode every atomic rule is placed into the layer of its priority.
func (c *Collector) Render(entries []Entry) (*css.Stylesheet, error) {
	sheet := &css.Stylesheet{}
	for _, e := range entries {
		layer := ""
		if e.Atomic() && c.opts.Specificity.UsesLayers() {
			layer = LayerPrefix + strconv.Itoa(e.Priority)
		}
		sheet.Items = append(sheet.Items, css.StylesheetItem{Layer: layer, Text: e.LTR})
		if e.RTL != "" {
			sheet.Items = append(sheet.Items, css.StylesheetItem{Layer: layer, Text: e.RTL})
		}
	}

	if c.opts.Header != "" {
		header, err := expandHeader(c.opts.Header, headerValues(entries, sheet))
		if err != nil {
			return nil, err
		}
		sheet.Header = header
	}
	return sheet, nil
}

func headerValues(entries []Entry, sheet *css.Stylesheet) HeaderValues {
	v := HeaderValues{
		App:     misc.GetAppName(),
		Version: misc.GetVersion(),
		Layers:  sheet.Layers(),
	}
	for _, e := range entries {
		if e.Atomic() {
			v.Rules++
		}
		if !slices.Contains(v.Modules, e.Module) {
			v.Modules = append(v.Modules, e.Module)
		}
	}
	slices.Sort(v.Modules)
	return v
}

func expandHeader(field string, values HeaderValues) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New("header").Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse header template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand header template: %w", err)
	}
	return buf.String(), nil
}
