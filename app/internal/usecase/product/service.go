package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"example.com/mystic-prints/app/internal/domain/fulfillment"
	dom "example.com/mystic-prints/app/internal/domain/product"
)

// Publisher creates the catalog product on the fulfillment provider.
type Publisher interface {
	CreateProduct(ctx context.Context, req fulfillment.ProductRequest) (*fulfillment.Product, error)
}

type Service struct {
	repo      dom.Repository
	publisher Publisher
}

func NewService(repo dom.Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Create stores the product with its small, medium and large variants.
func (s *Service) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Artist = strings.TrimSpace(p.Artist)
	if p.Title == "" || p.Artist == "" || p.ImageRef == "" || p.ProductType == "" {
		return nil, dom.ErrInvalidProduct
	}
	if !fulfillment.KnownProductType(p.ProductType) {
		return nil, dom.ErrUnknownProductType
	}

	p.Variants = DefaultVariants(p.ProductType, p.Price)
	for _, v := range p.Variants {
		if !v.Price.IsPositive() {
			return nil, dom.ErrInvalidPrice
		}
	}
	return s.repo.Create(ctx, p)
}

// DefaultVariants prices small and large around the medium price. Canvas
// spreads wider than the other product types.
func DefaultVariants(productType string, price decimal.Decimal) []dom.Variant {
	down, up := decimal.NewFromInt(5), decimal.NewFromInt(10)
	if productType == "canvas" {
		down, up = decimal.NewFromInt(10), decimal.NewFromInt(20)
	}
	prices := map[string]decimal.Decimal{
		"small":  price.Sub(down),
		"medium": price,
		"large":  price.Add(up),
	}

	variants := make([]dom.Variant, 0, len(fulfillment.Sizes))
	for _, size := range fulfillment.Sizes {
		variants = append(variants, dom.Variant{
			VariantID: fulfillment.VariantID(productType, size),
			Size:      size,
			Price:     prices[size],
		})
	}
	return variants
}

func (s *Service) Update(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	existed, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Title != "" {
		existed.Title = strings.TrimSpace(p.Title)
	}
	if p.Artist != "" {
		existed.Artist = strings.TrimSpace(p.Artist)
	}
	if p.Description != "" {
		existed.Description = p.Description
	}
	if p.Year != "" {
		existed.Year = p.Year
	}
	if p.ImageRef != "" {
		existed.ImageRef = p.ImageRef
	}
	if p.ProductType != "" {
		if !fulfillment.KnownProductType(p.ProductType) {
			return nil, dom.ErrUnknownProductType
		}
		existed.ProductType = p.ProductType
	}
	if !p.Price.IsZero() {
		if !p.Price.IsPositive() {
			return nil, dom.ErrInvalidPrice
		}
		existed.Price = p.Price
	}

	existed.Variants = DefaultVariants(existed.ProductType, existed.Price)
	for _, v := range existed.Variants {
		if !v.Price.IsPositive() {
			return nil, dom.ErrInvalidPrice
		}
	}
	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	return s.repo.List(ctx, filter)
}

// Publish creates the provider catalog entry for one size of the product,
// priced at the provider retail price of its type.
func (s *Service) Publish(ctx context.Context, id int64, size string) (*fulfillment.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if size == "" {
		size = "medium"
	}
	v, ok := p.VariantBySize(size)
	if !ok {
		return nil, dom.ErrVariantNotFound
	}

	return s.publisher.CreateProduct(ctx, fulfillment.ProductRequest{
		SyncProduct: fulfillment.SyncProduct{Name: p.Title, Thumbnail: p.ImageRef},
		SyncVariants: []fulfillment.SyncVariant{{
			RetailPrice: fulfillment.RetailPrice(p.ProductType),
			VariantID:   v.VariantID,
			Files:       []fulfillment.File{{URL: p.ImageRef}},
		}},
	})
}
