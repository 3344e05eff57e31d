package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type Mode string

const (
	ModeProfile Mode = "profile"
	ModeSearch  Mode = "search"
)

var ErrInvalidMode = errors.New("invalid mode")

// GiftEngineInput is a closed sum type: the only implementations are
// *ProfileInput and *SearchInput. Dispatch goes through InputVisitor, so a
// new variant cannot be added without every visitor learning about it.
type GiftEngineInput interface {
	Mode() Mode
	Accept(ctx context.Context, v InputVisitor) (GiftEngineResult, error)
	sealedInput()
}

type InputVisitor interface {
	VisitProfile(ctx context.Context, in *ProfileInput) (GiftEngineResult, error)
	VisitSearch(ctx context.Context, in *SearchInput) (GiftEngineResult, error)
}

type ProfileInput struct {
	RecipientProfile RecipientProfile `json:"recipient_profile"`
	GiftingContext   GiftingContext   `json:"gifting_context"`
	StylePersonality StylePersonality `json:"style_personality"`
}

func (p *ProfileInput) Mode() Mode { return ModeProfile }

func (p *ProfileInput) Accept(ctx context.Context, v InputVisitor) (GiftEngineResult, error) {
	return v.VisitProfile(ctx, p)
}

func (p *ProfileInput) sealedInput() {}

func (p ProfileInput) MarshalJSON() ([]byte, error) {
	type plain ProfileInput
	return json.Marshal(struct {
		Mode Mode `json:"mode"`
		plain
	}{ModeProfile, plain(p)})
}

type SearchInput struct {
	SearchQuery string `json:"search_query"`
}

func (s *SearchInput) Mode() Mode { return ModeSearch }

func (s *SearchInput) Accept(ctx context.Context, v InputVisitor) (GiftEngineResult, error) {
	return v.VisitSearch(ctx, s)
}

func (s *SearchInput) sealedInput() {}

func (s SearchInput) MarshalJSON() ([]byte, error) {
	type plain SearchInput
	return json.Marshal(struct {
		Mode Mode `json:"mode"`
		plain
	}{ModeSearch, plain(s)})
}

// DecodeGiftEngineInput reads the mode tag first and decodes the body into
// the matching variant. A missing or unknown mode yields ErrInvalidMode.
func DecodeGiftEngineInput(body []byte) (GiftEngineInput, error) {
	var envelope struct {
		Mode Mode `json:"mode"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	switch envelope.Mode {
	case ModeProfile:
		var in ProfileInput
		if err := json.Unmarshal(body, &in); err != nil {
			return nil, fmt.Errorf("decode profile request: %w", err)
		}
		return &in, nil
	case ModeSearch:
		var in SearchInput
		if err := json.Unmarshal(body, &in); err != nil {
			return nil, fmt.Errorf("decode search request: %w", err)
		}
		return &in, nil
	case "":
		return nil, fmt.Errorf("%w: mode is required", ErrInvalidMode)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, envelope.Mode)
	}
}
