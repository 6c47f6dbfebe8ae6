package composer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const maxPhotos = 3

var (
	panelColor = color.RGBA{R: 15, G: 23, B: 42, A: 220}
	textColor  = color.White
	accent     = color.RGBA{R: 250, G: 204, B: 21, A: 255}
)

// CanvasComposer draws the template, photos and text locally
type CanvasComposer struct {
	fetch           *Fetcher
	defaultTemplate string
}

func NewCanvasComposer(fetch *Fetcher, defaultTemplate string) *CanvasComposer {
	return &CanvasComposer{fetch: fetch, defaultTemplate: defaultTemplate}
}

var _ repository.IImageComposer = (*CanvasComposer)(nil)

func (c *CanvasComposer) Kind() model.ComposerKind { return model.ComposerCanvas }

func (c *CanvasComposer) Compose(ctx context.Context, req model.ComposeRequest) ([]byte, error) {
	lg := logger.GetLogger().WithField("format", req.Format)
	w, h := req.Format.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	templateURL := req.Template.ImageURL
	if templateURL == "" {
		templateURL = c.defaultTemplate
	}
	if templateURL != "" {
		bg, err := c.fetch.Image(ctx, templateURL)
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrCompose, err.Error())
		}
		drawCover(dst, dst.Bounds(), bg)
	}

	regions := photoRegions(w, h)
	drawn := 0
	for _, u := range req.PhotoURLs {
		if drawn == maxPhotos {
			break
		}
		photo, err := c.fetch.Image(ctx, u)
		if err != nil {
			lg.WithField("url", u).WithField("error", err).Warn("skipping listing photo")
			continue
		}
		drawCover(dst, regions[drawn], photo)
		drawn++
	}
	if drawn == 0 && len(req.PhotoURLs) > 0 {
		return nil, domainerrors.ErrCompose.WithDetails("no listing photo could be loaded")
	}

	panel := textPanel(w, h)
	draw.Draw(dst, panel, image.NewUniform(panelColor), image.Point{}, draw.Over)
	c.drawBranding(ctx, dst, panel, req.Fields)
	drawFields(dst, panel, req.Fields)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func (c *CanvasComposer) drawBranding(ctx context.Context, dst *image.RGBA, panel image.Rectangle, f model.TextFields) {
	size := panel.Dy() * 2 / 3
	margin := panel.Dy() / 6
	if f.AgentPhotoURL != "" {
		if photo, err := c.fetch.Image(ctx, f.AgentPhotoURL); err == nil {
			box := image.Rect(panel.Max.X-margin-size, panel.Min.Y+margin, panel.Max.X-margin, panel.Min.Y+margin+size)
			drawCircle(dst, box, photo)
		} else {
			logger.GetLogger().WithField("error", err).Warn("skipping agent photo")
		}
	}
	if f.LogoURL != "" {
		if logo, err := c.fetch.Image(ctx, f.LogoURL); err == nil {
			s := panel.Dy() / 2
			box := image.Rect(dst.Bounds().Max.X-margin-s, margin, dst.Bounds().Max.X-margin, margin+s)
			b := logo.Bounds()
			draw.CatmullRom.Scale(dst, containFit(b.Dx(), b.Dy(), box), logo, b, draw.Over, nil)
		} else {
			logger.GetLogger().WithField("error", err).Warn("skipping logo")
		}
	}
}

// photoRegions splits the area above the text panel into one large region and two small ones
func photoRegions(w, h int) [maxPhotos]image.Rectangle {
	gap := w / 90
	top := textPanel(w, h).Min.Y - gap
	mainH := top * 2 / 3
	half := (w - 3*gap) / 2
	return [maxPhotos]image.Rectangle{
		image.Rect(gap, gap, w-gap, mainH),
		image.Rect(gap, mainH+gap, gap+half, top),
		image.Rect(2*gap+half, mainH+gap, w-gap, top),
	}
}

func textPanel(w, h int) image.Rectangle {
	return image.Rect(0, h-h/4, w, h)
}

func drawCover(dst draw.Image, box image.Rectangle, src image.Image) {
	b := src.Bounds()
	crop := CoverFit(b.Dx(), b.Dy(), box.Dx(), box.Dy()).Add(b.Min)
	draw.CatmullRom.Scale(dst, box, src, crop, draw.Over, nil)
}

// circle is an alpha mask selecting the disc inscribed in r
type circle struct {
	r image.Rectangle
}

func (c circle) ColorModel() color.Model { return color.AlphaModel }
func (c circle) Bounds() image.Rectangle { return c.r }
func (c circle) At(x, y int) color.Color {
	radius := float64(c.r.Dx()) / 2
	cx := float64(c.r.Min.X) + radius
	cy := float64(c.r.Min.Y) + radius
	dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
	if dx*dx+dy*dy <= radius*radius {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

func drawCircle(dst draw.Image, box image.Rectangle, src image.Image) {
	side := min(box.Dx(), box.Dy())
	box = image.Rect(box.Min.X, box.Min.Y, box.Min.X+side, box.Min.Y+side)
	scaled := image.NewRGBA(box)
	drawCover(scaled, box, src)
	draw.DrawMask(dst, box, scaled, box.Min, circle{r: box}, box.Min, draw.Over)
}

// drawFields renders the price, wrapped address and agent line. basicfont is
// a 7x13 bitmap face, so text is drawn small and scaled up.
func drawFields(dst draw.Image, panel image.Rectangle, f model.TextFields) {
	face := basicfont.Face7x13
	scale := max(panel.Dy()/60, 1)
	budget := (panel.Dx()*2/3)/scale - 8

	type line struct {
		text string
		col  color.Color
	}
	var lines []line
	if f.Price != "" {
		lines = append(lines, line{f.Price, accent})
	}
	for _, l := range WrapText(face, f.Address, budget) {
		lines = append(lines, line{l, textColor})
	}
	agent := f.AgentName
	if f.AgentPhone != "" {
		if agent != "" {
			agent += "  "
		}
		agent += f.AgentPhone
	}
	if agent != "" {
		lines = append(lines, line{agent, textColor})
	}
	if len(lines) == 0 {
		return
	}

	lineH := face.Metrics().Height.Ceil() + 2
	small := image.NewRGBA(image.Rect(0, 0, budget+8, lineH*len(lines)+4))
	for i, l := range lines {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.NewUniform(l.col),
			Face: face,
			Dot:  fixed.P(4, (i+1)*lineH),
		}
		d.DrawString(l.text)
	}
	margin := panel.Dy() / 8
	target := image.Rect(panel.Min.X+margin, panel.Min.Y+margin/2,
		panel.Min.X+margin+small.Bounds().Dx()*scale, panel.Min.Y+margin/2+small.Bounds().Dy()*scale)
	draw.NearestNeighbor.Scale(dst, target.Intersect(panel), small, small.Bounds(), draw.Over, nil)
}
