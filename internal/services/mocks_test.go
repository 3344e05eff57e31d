package services

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/giftengine/internal/providers/search"
)

// Mock completion provider for testing
type MockChatModel struct {
	mock.Mock
	opts []model.Option
}

func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.opts = opts
	args := m.Called(ctx, input)
	if msg := args.Get(0); msg != nil {
		return msg.(*schema.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// CommonOptions resolves the options passed on the last call.
func (m *MockChatModel) CommonOptions() *model.Options {
	return model.GetCommonOptions(nil, m.opts...)
}

// Mock search provider for testing
type MockSearchClient struct {
	mock.Mock
}

func (m *MockSearchClient) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	args := m.Called(ctx, query, opts)
	if results := args.Get(0); results != nil {
		return results.([]search.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func completion(content string) *schema.Message {
	return &schema.Message{Role: schema.Assistant, Content: content}
}

const fiveIdeasJSON = `[
  {"title":"Pottery class","description":"A two-hour wheel throwing session","why_it_fits":"Loves making things","gift_type":"experience","price_band":"50_100","search_query_for_web":"pottery class gift voucher"},
  {"title":"Climbing chalk bag","description":"Hand-stitched chalk bag","why_it_fits":"Climbs every weekend","gift_type":"physical","price_band":"20_50","search_query_for_web":"handmade climbing chalk bag"},
  {"title":"Coffee tasting box","description":"Six single-origin roasts","why_it_fits":"Coffee enthusiast","gift_type":"physical","price_band":"20_50","search_query_for_web":"single origin coffee tasting box"},
  {"title":"Bouldering day pass bundle","description":"Five passes at a local wall","why_it_fits":"Wants to climb more","gift_type":"experience","price_band":"50_100","search_query_for_web":"bouldering gym gift pass"},
  {"title":"Ceramic pour-over set","description":"Hand-thrown dripper and mug","why_it_fits":"Coffee and craft in one","gift_type":"mixed","price_band":"50_100","search_query_for_web":"handmade ceramic pour over set"}
]`
