package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"
)

const textDetection = "TEXT_DETECTION"

var ErrEmptyImage = errors.New("image is empty")

type ItfVision interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
}

type visionClient struct {
	service *vision.Service
}

// New builds a Cloud Vision client. GOOGLE_VISION_API_KEY is used when set,
// otherwise application default credentials are looked up.
func New(ctx context.Context) (ItfVision, error) {
	var opts []option.ClientOption

	if apiKey := os.Getenv("GOOGLE_VISION_API_KEY"); apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		creds, err := google.FindDefaultCredentials(ctx, vision.CloudVisionScope)
		if err != nil {
			return nil, fmt.Errorf("find google credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	return NewWithOptions(ctx, opts...)
}

func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (ItfVision, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}

	return &visionClient{service: svc}, nil
}

// ExtractText returns the full-page text of the first annotation, or an empty
// string when the image contains no text. An error reported inside the
// response is returned as an error.
func (v *visionClient) ExtractText(ctx context.Context, image []byte, _ string) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
				Features: []*vision.Feature{{Type: textDetection}},
			},
		},
	}

	res, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("annotate image: %w", err)
	}

	if len(res.Responses) == 0 {
		return "", nil
	}

	first := res.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return "", fmt.Errorf("vision error: %s", first.Error.Message)
	}

	if len(first.TextAnnotations) == 0 {
		return "", nil
	}

	return strings.TrimSpace(first.TextAnnotations[0].Description), nil
}
