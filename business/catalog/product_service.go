package catalog

import (
	"context"
	"errors"
	"fmt"

	"stylShop/domain"
	"stylShop/pkg/logger"
)

var ErrInvalidProduct = errors.New("invalid product")

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindActive(ctx context.Context, categories []string, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

func validateProduct(product *domain.Product) error {
	if product.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if product.Image == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidProduct)
	}
	if product.Brand == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidProduct)
	}
	if !isProductCategory(product.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, product.Category)
	}
	if !product.PriceTier.Valid() {
		return fmt.Errorf("%w: unknown price tier %q", ErrInvalidProduct, product.PriceTier)
	}
	if product.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidProduct)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	return nil
}

func isProductCategory(c string) bool {
	for _, known := range domain.ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (s *Service) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all product", err)
		return nil, err
	}

	return products, nil
}

func (s *Service) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: invalid product id", ErrInvalidProduct)
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			logger.Error("failed to find product by id", "product_id", id, "error", err)
		}
		return nil, err
	}

	return &product, nil
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validateProduct(product); err != nil {
		logger.Debug("rejected product", "error", err)
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created", "product_id", product.ID)

	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if product.ID == 0 {
		return nil, fmt.Errorf("%w: product ID is required", ErrInvalidProduct)
	}
	if err := validateProduct(product); err != nil {
		logger.Debug("rejected product update", "product_id", product.ID, "error", err)
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		logger.Error("failed to update product", "product_id", product.ID, "error", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated", "product_id", product.ID)

	return &updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		return fmt.Errorf("%w: invalid product id", ErrInvalidProduct)
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting product")
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		logger.Error("failed to delete product", "product_id", id, "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("product deleted", "product_id", id)

	return nil
}
