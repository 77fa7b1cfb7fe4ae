package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"atelier/internal/catalog"
	"atelier/internal/domain/content"
	"atelier/internal/domain/products"
	"atelier/internal/domain/storage"
	"atelier/internal/inquiry"
	"atelier/internal/ratelimiter"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

// ---------------------------------------------------------------------------
// products.Store
// ---------------------------------------------------------------------------

type stubProductStore struct {
	mu         sync.Mutex
	categories map[int64]*products.Category
	products   map[int64]*products.ProductDetail
	nextID     int64
	lastFilter products.ProductFilter
	lastSave   *products.SaveProductInput
	listErr    error
}

func newStubProductStore() *stubProductStore {
	s := &stubProductStore{
		categories: map[int64]*products.Category{},
		products:   map[int64]*products.ProductDetail{},
		nextID:     1000,
	}
	for _, c := range []products.Category{
		{ID: 1, Name: "Men", Slug: "men"},
		{ID: 11, Name: "Tops", Slug: "men-tops", ParentID: ptr(int64(1))},
		{ID: 111, Name: "T-Shirts", Slug: "men-t-shirts", ParentID: ptr(int64(11))},
		{ID: 12, Name: "Jeans", Slug: "men-jeans", ParentID: ptr(int64(1))},
		{ID: 13, Name: "Shoes", Slug: "men-shoes", ParentID: ptr(int64(1))},
		{ID: 131, Name: "Sneakers", Slug: "men-sneakers", ParentID: ptr(int64(13))},
		{ID: 2, Name: "Women", Slug: "women"},
		{ID: 21, Name: "Dresses", Slug: "women-dresses", ParentID: ptr(int64(2))},
	} {
		s.categories[c.ID] = &c
	}

	s.putProduct(&products.Product{ID: 1, Name: "Linen Shirt", Slug: "linen-shirt", Price: decimal.RequireFromString("2499.50"), CategoryID: 111, IsActive: true},
		[]catalog.VariantSpec{{Size: "S", Color: "#000000", Stock: 3}, {Size: "M", Color: "#000000", Stock: 3}, {Size: "M", Color: "#FFFFFF", Stock: 3}},
		[]string{"https://res.cloudinary.com/demo/image/upload/v1/products/shirt-front.jpg", "https://res.cloudinary.com/demo/image/upload/v1/products/shirt-back.jpg"})
	s.putProduct(&products.Product{ID: 2, Name: "Red Dress", Slug: "red-dress", Price: decimal.NewFromInt(5200), CategoryID: 21, IsActive: true},
		[]catalog.VariantSpec{{Size: "M", Color: "#FF0000", Stock: 1}}, nil)
	s.putProduct(&products.Product{ID: 3, Name: "Draft Tee", Slug: "draft-tee", Price: decimal.NewFromInt(900), CategoryID: 111, IsActive: false},
		[]catalog.VariantSpec{{Size: "M", Color: "#000000"}}, nil)
	return s
}

func (s *stubProductStore) putProduct(p *products.Product, specs []catalog.VariantSpec, urls []string) *products.ProductDetail {
	d := &products.ProductDetail{Product: p, Category: s.categories[p.CategoryID]}
	for i, v := range specs {
		d.Variants = append(d.Variants, &products.ProductVariant{ID: int64(i + 1), ProductID: p.ID, Size: v.Size, Color: v.Color, Stock: v.Stock})
	}
	for i, u := range urls {
		d.Images = append(d.Images, &products.ProductImage{ID: int64(i + 1), ProductID: p.ID, ImageURL: u, DisplayOrder: i})
	}
	s.products[p.ID] = d
	return d
}

func (s *stubProductStore) ListCategories(ctx context.Context) ([]*products.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*products.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubProductStore) ListCategoryNodes(ctx context.Context) ([]catalog.Node, error) {
	list, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]catalog.Node, 0, len(list))
	for _, c := range list {
		nodes = append(nodes, c.Node())
	}
	return nodes, nil
}

func (s *stubProductStore) GetCategoryByID(ctx context.Context, id int64) (*products.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, products.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubProductStore) slugTaken(slug string, except int64) bool {
	for _, c := range s.categories {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (s *stubProductStore) CreateCategory(ctx context.Context, c *products.Category) (*products.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(c.Slug, 0) {
		return nil, products.ErrDuplicateSlug
	}
	if c.ParentID != nil {
		if _, ok := s.categories[*c.ParentID]; !ok {
			return nil, products.ErrInvalidParent
		}
	}
	s.nextID++
	created := *c
	created.ID = s.nextID
	created.CreatedAt = time.Now()
	s.categories[created.ID] = &created
	return &created, nil
}

func (s *stubProductStore) UpdateCategory(ctx context.Context, c *products.Category) (*products.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return nil, products.ErrCategoryNotFound
	}
	if s.slugTaken(c.Slug, c.ID) {
		return nil, products.ErrDuplicateSlug
	}
	// walk up from the new parent
	for p := c.ParentID; p != nil; {
		if *p == c.ID {
			return nil, products.ErrCircularDependency
		}
		parent, ok := s.categories[*p]
		if !ok {
			return nil, products.ErrInvalidParent
		}
		p = parent.ParentID
	}
	updated := *c
	s.categories[c.ID] = &updated
	return &updated, nil
}

func (s *stubProductStore) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return products.ErrCategoryNotFound
	}
	for _, c := range s.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return products.ErrCategoryInUse
		}
	}
	for _, p := range s.products {
		if p.Product.CategoryID == id {
			return products.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *stubProductStore) CountProductsInCategory(ctx context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.products {
		if p.Product.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (s *stubProductStore) card(d *products.ProductDetail) products.ProductCard {
	c := products.ProductCard{
		ID: d.Product.ID, Name: d.Product.Name, Slug: d.Product.Slug, Price: d.Product.Price,
		CategoryID: d.Product.CategoryID, IsActive: d.Product.IsActive,
	}
	if cat, ok := s.categories[d.Product.CategoryID]; ok {
		c.CategoryName, c.CategorySlug = cat.Name, cat.Slug
	}
	if len(d.Images) > 0 {
		c.PrimaryImageURL = &d.Images[0].ImageURL
	}
	return c
}

func (s *stubProductStore) ListProductCards(ctx context.Context, f products.ProductFilter) ([]*products.ProductCard, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = f

	allowed := map[int64]bool{}
	for _, id := range f.CategoryIDs {
		allowed[id] = true
	}
	var out []*products.ProductCard
	for _, d := range s.products {
		if f.ActiveOnly && !d.Product.IsActive {
			continue
		}
		if f.Restricted && !allowed[d.Product.CategoryID] {
			continue
		}
		c := s.card(d)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (s *stubProductStore) ListAdminProductCards(ctx context.Context, limit, offset int) ([]*products.AdminProductCard, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*products.AdminProductCard
	for _, d := range s.products {
		out = append(out, &products.AdminProductCard{ProductCard: s.card(d), VariantsCount: len(d.Variants), ImagesCount: len(d.Images)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (s *stubProductStore) GetProductByID(ctx context.Context, id int64) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.products[id]
	if !ok {
		return nil, products.ErrProductNotFound
	}
	return d.Product, nil
}

func (s *stubProductStore) GetProductDetailBySlug(ctx context.Context, slug string) (*products.ProductDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.products {
		if d.Product.Slug == slug && d.Product.IsActive {
			return d, nil
		}
	}
	return nil, products.ErrProductNotFound
}

func (s *stubProductStore) GetProductDetailByID(ctx context.Context, id int64) (*products.ProductDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.products[id]
	if !ok {
		return nil, products.ErrProductNotFound
	}
	return d, nil
}

func (s *stubProductStore) SaveProduct(ctx context.Context, in *products.SaveProductInput) (*products.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSave = in

	if _, ok := s.categories[in.CategoryID]; !ok {
		return nil, products.ErrCategoryNotFound
	}
	for _, d := range s.products {
		if d.Product.Slug == in.Slug && d.Product.ID != in.ID {
			return nil, products.ErrDuplicateSlug
		}
	}

	var previous []*products.ProductImage
	id := in.ID
	if id == 0 {
		s.nextID++
		id = s.nextID
	} else {
		old, ok := s.products[id]
		if !ok {
			return nil, products.ErrProductNotFound
		}
		previous = old.Images
	}

	p := &products.Product{ID: id, Name: in.Name, Slug: in.Slug, Description: in.Description, Price: in.Price, CategoryID: in.CategoryID, IsActive: in.IsActive}
	d := s.putProduct(p, in.Variants, in.ImageURLs)

	res := &products.SaveResult{Product: p, Variants: d.Variants, Images: d.Images}
	for _, img := range previous {
		res.RemovedImageURLs = append(res.RemovedImageURLs, img.ImageURL)
	}
	res.RemovedImageURLs = s.unreferenced(res.RemovedImageURLs)
	return res, nil
}

func (s *stubProductStore) SetProductActive(ctx context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.products[id]
	if !ok {
		return products.ErrProductNotFound
	}
	d.Product.IsActive = active
	return nil
}

func (s *stubProductStore) DeleteProduct(ctx context.Context, id int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.products[id]
	if !ok {
		return nil, products.ErrProductNotFound
	}
	delete(s.products, id)
	var urls []string
	for _, img := range d.Images {
		urls = append(urls, img.ImageURL)
	}
	return s.unreferenced(urls), nil
}

func (s *stubProductStore) UnreferencedImageURLs(ctx context.Context, urls []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreferenced(urls), nil
}

// unreferenced mirrors the repository query; callers hold mu.
func (s *stubProductStore) unreferenced(urls []string) []string {
	used := map[string]bool{}
	for _, d := range s.products {
		for _, img := range d.Images {
			used[img.ImageURL] = true
		}
	}
	for _, c := range s.categories {
		if c.ImageURL != nil {
			used[*c.ImageURL] = true
		}
	}
	var out []string
	for _, u := range urls {
		if !used[u] {
			used[u] = true
			out = append(out, u)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// content.Store
// ---------------------------------------------------------------------------

type stubContentStore struct {
	mu     sync.Mutex
	blocks map[string]content.Block
	order  []string
	phone  string
}

func newStubContentStore() *stubContentStore {
	return &stubContentStore{blocks: map[string]content.Block{}}
}

func (s *stubContentStore) List(ctx context.Context, section string) ([]content.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []content.Block{}
	for _, b := range s.blocks {
		if section == "" || b.Section == section {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section+out[i].Key < out[j].Section+out[j].Key })
	return out, nil
}

func (s *stubContentStore) Get(ctx context.Context, section, key string) (*content.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[section+"/"+key]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &b, nil
}

func (s *stubContentStore) Upsert(ctx context.Context, req content.UpsertBlockRequest) (*content.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	b := content.Block{ID: int64(len(s.blocks) + 1), Section: req.Section, Key: req.Key, Value: req.Value, IsActive: active}
	s.blocks[req.Section+"/"+req.Key] = b
	return &b, nil
}

func (s *stubContentStore) Delete(ctx context.Context, section, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[section+"/"+key]; !ok {
		return content.ErrNotFound
	}
	delete(s.blocks, section+"/"+key)
	return nil
}

func (s *stubContentStore) SectionOrder(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return append([]string(nil), content.DefaultSectionOrder...), nil
	}
	return s.order, nil
}

func (s *stubContentStore) SetSectionOrder(ctx context.Context, order []string) ([]string, error) {
	clean, err := content.NormalizeSectionOrder(order)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = clean
	return clean, nil
}

func (s *stubContentStore) WhatsAppNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phone, nil
}

// ---------------------------------------------------------------------------
// media.Uploader
// ---------------------------------------------------------------------------

type stubUploader struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
	err     error
}

func (u *stubUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	url := "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/upload-" + strings.Repeat("x", len(u.uploads)+1) + ".png"
	u.uploads = append(u.uploads, url)
	return url, nil
}

func (u *stubUploader) Delete(ctx context.Context, url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, url)
	return nil
}

func (u *stubUploader) Deleted() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.deleted...)
}

// ---------------------------------------------------------------------------
// application
// ---------------------------------------------------------------------------

type testApp struct {
	*application
	products *stubProductStore
	content  *stubContentStore
	uploader *stubUploader
	handler  http.Handler
}

func newTestApplication(t *testing.T, cfg config) *testApp {
	t.Helper()

	logger := zap.NewNop().Sugar()
	ps := newStubProductStore()
	cs := newStubContentStore()
	up := &stubUploader{}

	inq, err := inquiry.NewBuilder(inquiry.Config{
		Phone:          "+977 9800000000",
		SiteURL:        "https://shop.test",
		CurrencySymbol: "Rs. ",
		RefSalt:        "test",
	}, cs, logger)
	require.NoError(t, err)

	if cfg.rateLimiter.RequestsPerTimeFrame == 0 {
		cfg.rateLimiter.RequestsPerTimeFrame = 100
		cfg.rateLimiter.TimeFrame = time.Minute
	}
	rl := ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame)
	t.Cleanup(rl.Stop)

	app := &application{
		config:      cfg,
		store:       &storage.Container{Products: ps, Content: cs},
		catalog:     catalog.NewService(ps, nil, logger, nil),
		media:       up,
		inquiry:     inq,
		logger:      logger,
		rateLimiter: rl,
	}
	return &testApp{application: app, products: ps, content: cs, uploader: up, handler: app.mount()}
}

func (ta *testApp) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

// decodeData unwraps the {"data": ...} envelope.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest), string(env.Data))
}
