package pixel

import (
	"image"
	"image/png"
	"io"
)

// ToNRGBA converts a premultiplied RGBA8 buffer to a stdlib *image.NRGBA,
// unpremultiplying each pixel — the same conversion gogpu-gg's own
// Pixmap.ToImage performs before handing a buffer to image/png.
func ToNRGBA(b *Buffer[RGBA8]) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width(), b.Height()))
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			c := Color(b.At(x, y)).Unpremultiply()
			i := img.PixOffset(x, y)
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
	return img
}

// EncodePNG writes b to w as a PNG, matching gogpu-gg's Pixmap.SavePNG
// idiom (image/png.Encode over a converted stdlib image.Image).
func EncodePNG(w io.Writer, b *Buffer[RGBA8]) error {
	return png.Encode(w, ToNRGBA(b))
}
