package shotvec

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

// DecodeImage decodes an image file to type image.Image.
func DecodeImage(src string) (image.Image, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open the image file %s", src)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode the image file %s", src)
	}
	return img, nil
}

// encodePNG renders an image to PNG bytes for the tracer.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "could not encode the traced image")
	}
	return buf.Bytes(), nil
}

// DetectPageSize reads the pixel dimensions of an image file without
// decoding the full raster. The first screenshot of a batch fixes the
// page size for the whole document.
func DetectPageSize(src string) (width, height int, err error) {
	file, err := os.Open(src)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "could not open the image file %s", src)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "could not read the image size of %s", src)
	}
	return cfg.Width, cfg.Height, nil
}
