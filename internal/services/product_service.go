package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/metrics"
	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/storage"
	"github.com/arzan03/CampusKart/internal/validation"
)

const categoriesCacheKey = "categories:summary"

func productCacheKey(id primitive.ObjectID) string {
	return "product:" + id.Hex()
}

type ProductInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,category"`
	Condition   string   `json:"condition" validate:"required,condition"`
}

func (in *ProductInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if slug, ok := models.CategorySlug(in.Category); ok {
		in.Category = slug
	}
	in.Condition = strings.ToLower(strings.TrimSpace(in.Condition))
}

// ProductUpdate carries optional changes. Nil or empty fields are left alone.
type ProductUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Condition   *string  `json:"condition" validate:"omitempty,condition"`
	Status      *string  `json:"status" validate:"omitempty,status"`
}

// normalize trims every field and drops blank ones so they are neither
// validated nor written.
func (u *ProductUpdate) normalize() {
	clean := func(v **string, lower bool) {
		if *v == nil {
			return
		}
		s := strings.TrimSpace(**v)
		if lower {
			s = strings.ToLower(s)
		}
		if s == "" {
			*v = nil
			return
		}
		*v = &s
	}
	clean(&u.Title, false)
	clean(&u.Description, false)
	clean(&u.Category, false)
	clean(&u.Condition, true)
	clean(&u.Status, true)
	if u.Category != nil {
		if slug, ok := models.CategorySlug(*u.Category); ok {
			u.Category = &slug
		}
	}
}

func (u *ProductUpdate) set() bson.M {
	set := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	str("title", u.Title)
	str("description", u.Description)
	str("category", u.Category)
	str("condition", u.Condition)
	str("status", u.Status)
	if u.Price != nil {
		set["price"] = *u.Price
	}
	return set
}

type ProductServiceConfig struct {
	MaxImageSize int64
	MaxImages    int
	CacheTTL     time.Duration
}

type ProductService struct {
	products ProductRepository
	users    UserRepository
	images   *imageSet
	cache    Cache
	cacheTTL time.Duration
}

// NewProductService wires the service. cache may be nil.
func NewProductService(products ProductRepository, users UserRepository, store ImageStore, cache Cache, cfg ProductServiceConfig) *ProductService {
	return &ProductService{
		products: products,
		users:    users,
		images:   &imageSet{store: store, maxSize: cfg.MaxImageSize, maxCount: cfg.MaxImages},
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
	}
}

// List returns every listing, newest first.
func (s *ProductService) List(ctx context.Context) ([]models.ProductView, error) {
	return s.find(ctx, db.ProductFilter{})
}

func (s *ProductService) Search(ctx context.Context, query string) ([]models.ProductView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return s.find(ctx, db.ProductFilter{Query: query})
}

// ByCategory lists one category. Display names resolve to their slug.
func (s *ProductService) ByCategory(ctx context.Context, category string) ([]models.ProductView, error) {
	if slug, ok := models.CategorySlug(category); ok {
		category = slug
	}
	return s.find(ctx, db.ProductFilter{Category: category})
}

func (s *ProductService) BySeller(ctx context.Context, sellerID string) ([]models.ProductView, error) {
	id, err := ParseID(sellerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.find(ctx, db.ProductFilter{Seller: id})
}

// Get returns one listing, served from the cache when possible.
func (s *ProductService) Get(ctx context.Context, productID string) (*models.ProductView, error) {
	id, err := ParseID(productID)
	if err != nil {
		return nil, err
	}

	product, ok := s.cachedProduct(ctx, id)
	if !ok {
		product, err = s.products.FindByID(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		s.storeProduct(ctx, product)
	}

	// The seller is loaded on every read so profile changes show up at once.
	views, err := s.populate(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create stores the images and inserts the listing for sellerID.
func (s *ProductService) Create(ctx context.Context, sellerID primitive.ObjectID, in ProductInput, uploads []storage.Upload) (*models.ProductView, error) {
	in.normalize()
	if fields := validation.Struct(&in); fields != nil {
		return nil, newValidationError(fields)
	}
	urls, err := s.images.saveAll(ctx, storage.FolderProducts, uploads)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Images:      urls,
		Seller:      sellerID,
		Status:      models.StatusActive,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		s.images.deleteAll(ctx, urls)
		return nil, fmt.Errorf("insert product: %w", err)
	}
	s.invalidate(ctx, product.ID)

	logging.Info().Str("product_id", product.ID.Hex()).Str("seller_id", sellerID.Hex()).
		Int("images", len(urls)).Msg("product created")

	views, err := s.populate(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update changes a listing owned by userID. New uploads replace the old images.
func (s *ProductService) Update(ctx context.Context, userID primitive.ObjectID, productID string, upd ProductUpdate, uploads []storage.Upload) (*models.ProductView, error) {
	upd.normalize()
	if fields := validation.Struct(&upd); fields != nil {
		return nil, newValidationError(fields)
	}

	product, err := s.owned(ctx, productID, func(p *models.Product) bool { return p.Seller == userID })
	if err != nil {
		return nil, err
	}

	set := upd.set()
	var newImages []string
	if len(uploads) > 0 {
		if newImages, err = s.images.saveAll(ctx, storage.FolderProducts, uploads); err != nil {
			return nil, err
		}
		set["images"] = newImages
	}
	if len(set) == 0 {
		views, err := s.populate(ctx, []models.Product{*product})
		if err != nil {
			return nil, err
		}
		return &views[0], nil
	}

	updated, err := s.products.Update(ctx, product.ID, set)
	if err != nil {
		s.images.deleteAll(ctx, newImages)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	if newImages != nil {
		s.images.deleteAll(ctx, product.Images)
	}
	s.invalidate(ctx, product.ID)

	views, err := s.populate(ctx, []models.Product{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a listing. The seller or any moderator may delete it.
func (s *ProductService) Delete(ctx context.Context, userID primitive.ObjectID, userType, productID string) error {
	product, err := s.owned(ctx, productID, func(p *models.Product) bool {
		return p.Seller == userID || models.IsModerator(userType)
	})
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.images.deleteAll(ctx, product.Images)
	s.invalidate(ctx, product.ID)

	logging.Info().Str("product_id", product.ID.Hex()).Str("by", userID.Hex()).Msg("product deleted")
	return nil
}

// Categories returns the catalogue with active listing counts.
func (s *ProductService) Categories(ctx context.Context) ([]models.CategorySummary, error) {
	if s.cache != nil {
		if raw, _ := s.cache.Get(ctx, categoriesCacheKey); raw != nil {
			var cached struct {
				Items []models.CategorySummary `bson:"items"`
			}
			if err := bson.Unmarshal(raw, &cached); err == nil {
				metrics.RecordCacheLookup(true)
				return cached.Items, nil
			}
		}
		metrics.RecordCacheLookup(false)
	}

	counts, err := s.products.CountByCategory(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	items := make([]models.CategorySummary, 0, len(models.Categories))
	for _, c := range models.Categories {
		items = append(items, models.CategorySummary{Category: c, Count: counts[c.Slug]})
	}

	if s.cache != nil {
		if raw, err := bson.Marshal(bson.M{"items": items}); err == nil {
			_ = s.cache.Set(ctx, categoriesCacheKey, raw, s.cacheTTL)
		}
	}
	return items, nil
}

// Category returns one catalogue entry and its listings.
func (s *ProductService) Category(ctx context.Context, slug string) (models.Category, []models.ProductView, error) {
	category, ok := models.CategoryBySlug(slug)
	if !ok {
		return models.Category{}, nil, ErrCategoryNotFound
	}
	products, err := s.ByCategory(ctx, slug)
	if err != nil {
		return models.Category{}, nil, err
	}
	return category, products, nil
}

func (s *ProductService) owned(ctx context.Context, productID string, allowed func(*models.Product) bool) (*models.Product, error) {
	id, err := ParseID(productID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if !allowed(product) {
		return nil, ErrForbidden
	}
	return product, nil
}

func (s *ProductService) find(ctx context.Context, filter db.ProductFilter) ([]models.ProductView, error) {
	products, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, products)
}

// populate embeds seller summaries with one user lookup for the whole page.
func (s *ProductService) populate(ctx context.Context, products []models.Product) ([]models.ProductView, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		if !seen[p.Seller] {
			seen[p.Seller] = true
			ids = append(ids, p.Seller)
		}
	}

	sellers, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}

	views := make([]models.ProductView, len(products))
	for i, p := range products {
		views[i] = models.NewProductView(p, sellers[p.Seller])
	}
	return views, nil
}

// cachedProduct returns the listing document only. Sellers are never cached.
func (s *ProductService) cachedProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, _ := s.cache.Get(ctx, productCacheKey(id))
	if raw == nil {
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	var product models.Product
	if err := bson.Unmarshal(raw, &product); err != nil {
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	metrics.RecordCacheLookup(true)
	return &product, true
}

func (s *ProductService) storeProduct(ctx context.Context, product *models.Product) {
	if s.cache == nil {
		return
	}
	raw, err := bson.Marshal(product)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, productCacheKey(product.ID), raw, s.cacheTTL)
}

func (s *ProductService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, productCacheKey(id), categoriesCacheKey)
}
