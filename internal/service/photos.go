package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// Prisoner photos are shown at most this size.
const (
	PhotoMaxWidth  = 150
	PhotoMaxHeight = 200
)

// ThumbnailProcessor shrinks an image to fit maxWidth x maxHeight, keeping
// its aspect ratio. It returns JPEG bytes and the original dimensions.
type ThumbnailProcessor interface {
	GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) ([]byte, int, int, error)
}

type imagingProcessor struct{}

func NewImagingProcessor() ThumbnailProcessor {
	return &imagingProcessor{}
}

// Images already inside the bounds are re-encoded without resizing.
func (p *imagingProcessor) GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) ([]byte, int, int, error) {
	img, _, err := image.Decode(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	out, err := encodeJPEG(imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos))
	if err != nil {
		return nil, 0, 0, err
	}
	return out, img.Bounds().Dx(), img.Bounds().Dy(), nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(domain.ThumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// PhotoAPI fetches prisoner photos.
type PhotoAPI interface {
	GetPhoto(ctx context.Context, token, prisonerNumber string) ([]byte, error)
}

// PhotoService serves resized prisoner photos.
type PhotoService interface {
	// Photo returns the prisoner's photo as a JPEG no larger than
	// PhotoMaxWidth x PhotoMaxHeight.
	Photo(ctx context.Context, token, prisonerNumber string) ([]byte, error)
}

type photoService struct {
	photos    PhotoAPI
	processor ThumbnailProcessor
	logger    *slog.Logger
}

func NewPhotoService(photos PhotoAPI, processor ThumbnailProcessor, logger *slog.Logger) PhotoService {
	return &photoService{
		photos:    photos,
		processor: processor,
		logger:    logger,
	}
}

func (s *photoService) Photo(ctx context.Context, token, prisonerNumber string) ([]byte, error) {
	const op = "PhotoService.Photo"

	if !domain.ValidPrisonerNumber(prisonerNumber) {
		return nil, domain.NotFound(op, "photo", prisonerNumber)
	}

	original, err := s.photos.GetPhoto(ctx, token, prisonerNumber)
	if err != nil {
		return nil, err
	}

	thumbnail, width, height, err := s.processor.GenerateThumbnail(bytes.NewReader(original), PhotoMaxWidth, PhotoMaxHeight)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to process photo")
	}

	s.logger.Debug("resized prisoner photo",
		"prisoner_number", prisonerNumber,
		"original_width", width,
		"original_height", height,
		"bytes", len(thumbnail),
	)
	return thumbnail, nil
}

// PlaceholderPhoto returns the image shown when a prisoner has no photo: a plain
// GOV.UK mid-grey JPEG at the full photo size.
func PlaceholderPhoto() ([]byte, error) {
	return encodeJPEG(imaging.New(PhotoMaxWidth, PhotoMaxHeight, color.NRGBA{R: 0xb1, G: 0xb4, B: 0xb6, A: 0xff}))
}
