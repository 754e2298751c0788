package slides

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// ErrNoFont means none of the font candidates could be loaded.
var ErrNoFont = errors.New("no usable font found")

// FontProvider hands out faces for slide text. Faces are not shared between
// goroutines, so callers ask for a fresh one per slide.
type FontProvider interface {
	Face(size float64) (font.Face, error)
}

// DefaultFontCandidates lists Hangul-capable fonts in lookup order: bundled
// assets first, then common system locations.
func DefaultFontCandidates() []string {
	return []string{
		"assets/fonts/NanumGothic.ttf",
		"assets/fonts/NotoSansKR-Regular.otf",
		"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/System/Library/Fonts/Supplemental/AppleSDGothicNeo.ttc",
		"C:/Windows/Fonts/malgun.ttf",
	}
}

// FileFontProvider loads the first candidate file that parses. With Strict
// unset, a missing font degrades to the built-in bitmap face, which cannot
// draw Hangul.
type FileFontProvider struct {
	Candidates []string
	Strict     bool

	once sync.Once
	font *opentype.Font
	path string
	err  error
}

// NewFileFontProvider creates a provider over candidates, or the defaults
// when candidates is empty.
func NewFileFontProvider(candidates []string, strict bool) *FileFontProvider {
	if len(candidates) == 0 {
		candidates = DefaultFontCandidates()
	}
	return &FileFontProvider{Candidates: candidates, Strict: strict}
}

// Load resolves the font once. It returns ErrNoFont only in strict mode.
func (p *FileFontProvider) Load() error {
	p.once.Do(func() {
		var failures []string
		for _, candidate := range p.Candidates {
			f, err := parseFontFile(candidate)
			if err != nil {
				failures = append(failures, err.Error())
				continue
			}
			p.font = f
			p.path = candidate
			return
		}
		if p.Strict {
			p.err = fmt.Errorf("%w: tried %s", ErrNoFont, strings.Join(failures, "; "))
		}
	})
	return p.err
}

// Path is the font file in use, empty when the fallback face is active.
func (p *FileFontProvider) Path() string {
	if err := p.Load(); err != nil {
		return ""
	}
	return p.path
}

// Face returns a face of the given pixel size.
func (p *FileFontProvider) Face(size float64) (font.Face, error) {
	if err := p.Load(); err != nil {
		return nil, err
	}
	if p.font == nil {
		return basicfont.Face7x13, nil
	}
	face, err := opentype.NewFace(p.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face from %s: %w", p.path, err)
	}
	return face, nil
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", path, err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("collection %s face 0: %w", path, err)
		}
		return f, nil
	default:
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return f, nil
	}
}

// BasicFontProvider always returns the built-in bitmap face.
type BasicFontProvider struct{}

// Face implements FontProvider.
func (BasicFontProvider) Face(float64) (font.Face, error) { return basicfont.Face7x13, nil }
