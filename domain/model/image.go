package model

// ImageFormat names a platform-sized output canvas
type ImageFormat string

const (
	FormatSquare    ImageFormat = "square"
	FormatStory     ImageFormat = "story"
	FormatLandscape ImageFormat = "landscape"
)

// ImageFormats lists every format rendered per property
var ImageFormats = []ImageFormat{FormatSquare, FormatStory, FormatLandscape}

// Size returns the pixel dimensions of the format
func (f ImageFormat) Size() (int, int) {
	switch f {
	case FormatStory:
		return 1080, 1920
	case FormatLandscape:
		return 1200, 628
	default:
		return 1080, 1080
	}
}

// ComposerKind selects one of the interchangeable image composers
type ComposerKind string

const (
	ComposerCanvas   ComposerKind = "canvas"
	ComposerAI       ComposerKind = "ai"
	ComposerTemplate ComposerKind = "template"
)

// Template identifies the marketing layout. Composers use whichever field they understand.
type Template struct {
	ID       string `json:"id"`        // hosted template id (templating service)
	ImageURL string `json:"image_url"` // background image (canvas and ai)
}

// TextFields is the overlay content shared by every composer
type TextFields struct {
	Title         string `json:"title"`
	Price         string `json:"price"`
	Address       string `json:"address"`
	AgentName     string `json:"agent_name"`
	AgentPhone    string `json:"agent_phone"`
	AgentPhotoURL string `json:"agent_photo_url,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`
}

// ComposeRequest is the input of a single image composition
type ComposeRequest struct {
	Format    ImageFormat
	Template  Template
	PhotoURLs []string
	Fields    TextFields
}
