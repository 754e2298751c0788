// Package slides composes the still frames of the briefing video: a fixed
// portrait canvas with an optional picture band and stroked text.
package slides

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoders for article images
	_ "image/jpeg"
	"image/png"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/Adda-Baaj/newsreel/internal/logger"
)

// TextStyle places a wrapped text block. Y is the top of the first line;
// a negative Y is measured up from the bottom edge.
type TextStyle struct {
	X         int     `mapstructure:"x" yaml:"x" json:"x"`
	Y         int     `mapstructure:"y" yaml:"y" json:"y"`
	Size      float64 `mapstructure:"size" yaml:"size" json:"size"`
	WrapWidth int     `mapstructure:"wrap_width" yaml:"wrap_width" json:"wrap_width"`
}

// Config describes the canvas. Band ratios are fractions of Height.
type Config struct {
	Width          int       `mapstructure:"width" yaml:"width" json:"width"`
	Height         int       `mapstructure:"height" yaml:"height" json:"height"`
	Background     string    `mapstructure:"background" yaml:"background" json:"background"`
	ImageMaxHeight float64   `mapstructure:"image_max_height" yaml:"image_max_height" json:"image_max_height"`
	BandTop        float64   `mapstructure:"band_top" yaml:"band_top" json:"band_top"`
	BandHeight     float64   `mapstructure:"band_height" yaml:"band_height" json:"band_height"`
	StrokeWidth    int       `mapstructure:"stroke_width" yaml:"stroke_width" json:"stroke_width"`
	LineSpacing    int       `mapstructure:"line_spacing" yaml:"line_spacing" json:"line_spacing"`
	Title          TextStyle `mapstructure:"title" yaml:"title" json:"title"`
	Caption        TextStyle `mapstructure:"caption" yaml:"caption" json:"caption"`
}

// DefaultConfig is the 1080×1920 portrait layout.
func DefaultConfig() Config {
	return Config{
		Width:          1080,
		Height:         1920,
		Background:     "#000000",
		ImageMaxHeight: 0.6,
		BandTop:        0.15,
		BandHeight:     0.55,
		StrokeWidth:    2,
		LineSpacing:    4,
		Title:          TextStyle{X: 60, Y: 80, Size: 64, WrapWidth: 18},
		Caption:        TextStyle{X: 60, Y: -400, Size: 48, WrapWidth: 20},
	}
}

// Slide is the content of one frame.
type Slide struct {
	ImagePath string
	Title     string
	Caption   string
}

// Renderer draws slides onto fresh canvases.
type Renderer struct {
	cfg        Config
	fonts      FontProvider
	log        logger.Logger
	background color.RGBA
}

// NewRenderer validates cfg and returns a Renderer.
func NewRenderer(cfg Config, fonts FontProvider, log logger.Logger) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", cfg.Width, cfg.Height)
	}
	if fonts == nil {
		return nil, fmt.Errorf("font provider is required")
	}
	bg, err := ParseHexColor(cfg.Background)
	if err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg, fonts: fonts, log: logger.Ensure(log), background: bg}, nil
}

// Render composes one slide. An image that is missing or cannot be decoded
// leaves the picture band empty; only font failures are errors.
func (r *Renderer) Render(s Slide) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	if s.ImagePath != "" {
		if src, err := decodeImage(s.ImagePath); err != nil {
			r.log.WarnObj("slide image skipped", "slide_image", map[string]any{
				"path":  s.ImagePath,
				"error": err.Error(),
			})
		} else {
			r.placeImage(canvas, src)
		}
	}

	if err := r.drawBlock(canvas, s.Title, r.cfg.Title); err != nil {
		return nil, err
	}
	if err := r.drawBlock(canvas, s.Caption, r.cfg.Caption); err != nil {
		return nil, err
	}
	return canvas, nil
}

// RenderToFile renders s and writes it as PNG.
func (r *Renderer) RenderToFile(s Slide, path string) error {
	img, err := r.Render(s)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create slide file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode slide png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close slide file: %w", err)
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// placeImage scales src down (never up) to fit the width and the maximum
// picture height, then centers it in the band.
func (r *Renderer) placeImage(canvas *image.RGBA, src image.Image) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return
	}
	w, h := FitWithin(b.Dx(), b.Dy(), r.cfg.Width, int(float64(r.cfg.Height)*r.cfg.ImageMaxHeight))

	bandTop := int(float64(r.cfg.Height) * r.cfg.BandTop)
	bandHeight := int(float64(r.cfg.Height) * r.cfg.BandHeight)
	x := (r.cfg.Width - w) / 2
	y := (bandHeight-h)/2 + bandTop

	dst := image.Rect(x, y, x+w, y+h)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, dst, src, b.Min, draw.Over)
		return
	}
	draw.CatmullRom.Scale(canvas, dst, src, b, draw.Over, nil)
}

// FitWithin returns w×h scaled to fit maxW×maxH, keeping the aspect ratio and
// never enlarging.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return nw, nh
}

// drawBlock wraps text and draws it line by line, each line outlined by the
// stroke before the white fill.
func (r *Renderer) drawBlock(canvas *image.RGBA, text string, style TextStyle) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	face, err := r.fonts.Face(style.Size)
	if err != nil {
		return fmt.Errorf("load font face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + r.cfg.LineSpacing
	top := style.Y
	if top < 0 {
		top += r.cfg.Height
	}

	for i, line := range Wrap(text, style.WrapWidth) {
		baseline := top + i*lineHeight + metrics.Ascent.Ceil()
		drawStroked(canvas, face, line, style.X, baseline, r.cfg.StrokeWidth)
	}
	return nil
}

func drawStroked(canvas *image.RGBA, face font.Face, text string, x, baseline, stroke int) {
	d := &font.Drawer{Dst: canvas, Face: face}
	if stroke > 0 {
		d.Src = image.NewUniform(color.Black)
		for dy := -stroke; dy <= stroke; dy++ {
			for dx := -stroke; dx <= stroke; dx++ {
				if dx*dx+dy*dy > stroke*stroke || (dx == 0 && dy == 0) {
					continue
				}
				d.Dot = fixed.P(x+dx, baseline+dy)
				d.DrawString(text)
			}
		}
	}
	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.P(x, baseline)
	d.DrawString(text)
}

// ParseHexColor parses #rgb or #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
