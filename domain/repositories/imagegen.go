package repositories

import (
	"context"
	"errors"
)

// GenerationRequest asks the backend to render one image from a textual
// description. CoinCost is forwarded as data; the backend owns the balance
// check and the deduction.
type GenerationRequest struct {
	UID         string `json:"uid"`
	Description string `json:"description"`
	CoinCost    int    `json:"coinCost"`
}

// GenerationResult is the backend's answer for one generation call.
type GenerationResult struct {
	ImageURL      string `json:"imageUrl"`
	ImageID       string `json:"imageId"`
	CoinsDeducted int    `json:"coinsDeducted"`
}

// ErrInsufficientBalance is returned when the backend rejects the coin
// deduction before generating. Terminal for that call; never retried.
var ErrInsufficientBalance = errors.New("insufficient coin balance")

// ImageGenerator abstracts the image-generation backend. Each call is an
// independent unit of work; callers bound it with a context deadline.
type ImageGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}
