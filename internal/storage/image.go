package storage

import (
	"bytes"
	"image"

	// register decoders for the allowed upload formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ProbeImage decodes just enough of the payload to confirm it really is an
// image and to report its pixel dimensions.
func ProbeImage(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, ErrNotAnImage
	}
	return cfg.Width, cfg.Height, nil
}
