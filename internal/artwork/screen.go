package artwork

import (
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

var fallbackResolution = domain.ScreenResolution{Width: 1920, Height: 1080}

// NewScreenResolution reads the kiosk display size, falling back to 1080p
// when no display is attached
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	displays := screenshot.NumActiveDisplays()
	if displays <= 0 {
		logger.Warn("No active display, using fallback resolution",
			zap.Int("width", fallbackResolution.Width),
			zap.Int("height", fallbackResolution.Height))
		res := fallbackResolution
		return &res
	}

	bounds := screenshot.GetDisplayBounds(0)
	res := &domain.ScreenResolution{Width: bounds.Dx(), Height: bounds.Dy()}
	logger.Info("Display detected",
		zap.Int("displays", displays),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))
	return res
}
