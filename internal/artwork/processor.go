package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG covers

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

const (
	blurRadius  = 15.0
	coverRatio  = 0.40 // cover edge as a share of the screen height
	jpegQuality = 90
)

// Processor renders covers and display backdrops in memory
type Processor struct {
	logger *zap.Logger
	res    *domain.ScreenResolution
}

// NewProcessor creates a processor targeting res
func NewProcessor(logger *zap.Logger, res *domain.ScreenResolution) *Processor {
	return &Processor{logger: logger, res: res}
}

// Resize scales the cover to a size x size square, cropping to the center
func (p *Processor) Resize(ctx context.Context, imageData []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid cover size: %d", size)
	}
	img, err := decode(ctx, imageData)
	if err != nil {
		return nil, err
	}
	return encode(imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos))
}

// Backdrop fills the screen with a blurred copy of the cover and pastes the
// sharp cover in the middle
func (p *Processor) Backdrop(ctx context.Context, imageData []byte) ([]byte, error) {
	img, err := decode(ctx, imageData)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	background := imaging.Fill(img, p.res.Width, p.res.Height, imaging.Center, imaging.Lanczos)
	background = imaging.Blur(background, blurRadius)

	coverHeight := max(int(float64(p.res.Height)*coverRatio), 1)
	coverWidth := max(coverHeight*bounds.Dx()/bounds.Dy(), 1)
	cover := imaging.Resize(img, coverWidth, coverHeight, imaging.Lanczos)

	at := image.Pt((p.res.Width-coverWidth)/2, (p.res.Height-coverHeight)/2)
	out, err := encode(imaging.Paste(background, cover, at))
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Backdrop rendered",
		zap.Int("w", p.res.Width),
		zap.Int("h", p.res.Height),
		zap.Int("bytes", len(out)))
	return out, nil
}

func decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

func encode(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
