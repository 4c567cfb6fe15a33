package domain

// DefaultImageMIME is used when the fetched bytes do not reveal their type.
const DefaultImageMIME = "image/jpeg"

// EncodedImage is a fetched image ready to be embedded into an inference query.
// It lives for the duration of one request only.
type EncodedImage struct {
	SourceURL string
	MimeType  string
	Base64    string // standard encoding, no data: prefix
	Width     int
	Height    int
}

func NewEncodedImage(sourceURL, mimeType, b64 string, width, height int) *EncodedImage {
	if mimeType == "" {
		mimeType = DefaultImageMIME
	}

	return &EncodedImage{
		SourceURL: sourceURL,
		MimeType:  mimeType,
		Base64:    b64,
		Width:     width,
		Height:    height,
	}
}

// DataURL renders the image as data:<mime>;base64,<payload>.
func (i *EncodedImage) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Base64
}
