package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrNothingRecorded = errors.New("viz: no frames recorded")

const (
	cellW = 8
	cellH = 16
)

var recordPalette = color.Palette{
	color.Black,
	color.White,
	color.RGBA{0x00, 0xcc, 0xcc, 0xff},
}

// Recorder turns canvas frames into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int
}

// NewRecorder records frames shown for delay hundredths of a second.
func NewRecorder(delay int) *Recorder {
	if delay <= 0 {
		delay = 2
	}
	return &Recorder{delay: delay}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterizes the canvas and stamps caption in the top-left corner.
func (r *Recorder) Capture(c *Canvas, caption string) {
	imgW, imgH := c.Width*cellW, c.Height*cellH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), recordPalette)

	dotW, dotH := cellW/2, cellH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - brailleBlank)
			if pattern <= 0 {
				continue
			}
			baseX, baseY := col*cellW, row*cellH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}

	if caption != "" {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(recordPalette[2]),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(4, 13),
		}
		d.DrawString(caption)
	}

	r.frames = append(r.frames, img)
}

func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNothingRecorded
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
