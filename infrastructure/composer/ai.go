package composer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/clients/gemini"

	"github.com/pkg/errors"
)

// ImageGenerator is the image model used by AIComposer
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, images []gemini.InlineImage) (*gemini.InlineImage, error)
}

// AIComposer asks an image model to lay the listing out on the template.
// The model is rate limited, so callers render formats one at a time.
type AIComposer struct {
	gen             ImageGenerator
	fetch           *Fetcher
	defaultTemplate string
}

func NewAIComposer(gen ImageGenerator, fetch *Fetcher, defaultTemplate string) *AIComposer {
	return &AIComposer{gen: gen, fetch: fetch, defaultTemplate: defaultTemplate}
}

var _ repository.IImageComposer = (*AIComposer)(nil)

func (c *AIComposer) Kind() model.ComposerKind { return model.ComposerAI }

func (c *AIComposer) Compose(ctx context.Context, req model.ComposeRequest) ([]byte, error) {
	var refs []gemini.InlineImage
	templateURL := req.Template.ImageURL
	if templateURL == "" {
		templateURL = c.defaultTemplate
	}
	urls := req.PhotoURLs
	if len(urls) > maxPhotos {
		urls = urls[:maxPhotos]
	}
	if templateURL != "" {
		urls = append([]string{templateURL}, urls...)
	}
	for _, u := range urls {
		data, mime, err := c.fetch.Bytes(ctx, u)
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrCompose, err.Error())
		}
		refs = append(refs, gemini.InlineImage{MimeType: mime, Data: data})
	}

	out, err := c.gen.GenerateImage(ctx, composePrompt(req, templateURL != ""), refs)
	if err != nil {
		return nil, err
	}
	return toPNG(out)
}

func composePrompt(req model.ComposeRequest, withTemplate bool) string {
	w, h := req.Format.Size()
	var b strings.Builder
	fmt.Fprintf(&b, "Create a real estate marketing image of exactly %dx%d pixels.\n", w, h)
	if withTemplate {
		b.WriteString("The first image is the brand template: keep its colors, layout and decorations. ")
		b.WriteString("The following images are property photos; place them into the template's photo areas.\n")
	} else {
		b.WriteString("The images are property photos; arrange them in a clean, modern layout.\n")
	}
	b.WriteString("Render the following text legibly and spelled exactly as given:\n")
	fmt.Fprintf(&b, "Title: %s\n", req.Fields.Title)
	fmt.Fprintf(&b, "Price: %s\n", req.Fields.Price)
	fmt.Fprintf(&b, "Address: %s\n", req.Fields.Address)
	fmt.Fprintf(&b, "Agent: %s\n", req.Fields.AgentName)
	fmt.Fprintf(&b, "Phone: %s\n", req.Fields.AgentPhone)
	b.WriteString("Return only the finished image.")
	return b.String()
}

// toPNG re-encodes model output so every stored image is a PNG
func toPNG(img *gemini.InlineImage) ([]byte, error) {
	if img.MimeType == "image/png" {
		return img.Data, nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, domainerrors.ErrCompose.WithDetails("model returned an undecodable image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}
