package service

import (
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"

	"gorm.io/gorm"
)

// fakeImageStorage 记录保存与删除的图片地址
type fakeImageStorage struct {
	mu      sync.Mutex
	saved   int
	deleted []string
	done    chan string
}

func newFakeImageStorage() *fakeImageStorage {
	return &fakeImageStorage{done: make(chan string, 8)}
}

func (f *fakeImageStorage) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	if file == nil {
		return "", ErrUploadEmpty
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved++
	return "/uploads/" + scene + "/" + file.Filename, nil
}

func (f *fakeImageStorage) Delete(url string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, url)
	f.mu.Unlock()
	f.done <- url
	return nil
}

func (f *fakeImageStorage) waitDeleted(t *testing.T) string {
	t.Helper()
	select {
	case url := <-f.done:
		return url
	case <-time.After(2 * time.Second):
		t.Fatalf("expected an image delete")
		return ""
	}
}

func newProductTestService(t *testing.T) (*gorm.DB, *ProductService, *fakeImageStorage) {
	t.Helper()
	db := setupServiceTestDB(t)
	storage := newFakeImageStorage()
	svc := NewProductService(
		repository.NewProductRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewPromotionRepository(db),
		storage,
	)
	return db, svc, storage
}

func TestProductCreateValidation(t *testing.T) {
	_, svc, _ := newProductTestService(t)

	product, err := svc.Create(CreateProductInput{CategoryID: 1, Name: " Choripán ", Price: mustMoney(t, "4500.456")})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.Name != "Choripán" || product.Price.String() != "4500.46" || !product.IsActive {
		t.Fatalf("unexpected product: %+v", product)
	}

	cases := []struct {
		name  string
		input CreateProductInput
		want  error
	}{
		{"empty name", CreateProductInput{CategoryID: 1, Name: " ", Price: mustMoney(t, "10")}, ErrProductInvalid},
		{"zero price", CreateProductInput{CategoryID: 1, Name: "Agua", Price: mustMoney(t, "0")}, ErrProductInvalid},
		{"missing category", CreateProductInput{CategoryID: 99, Name: "Agua", Price: mustMoney(t, "10")}, ErrCategoryNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestProductToggleAndPublicVisibility(t *testing.T) {
	db, svc, _ := newProductTestService(t)
	createTestProduct(t, db, 10, "Empanada", "1200", true)

	if _, err := svc.ToggleActive(10, false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if _, err := svc.GetPublicByID(10); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product must be hidden publicly, got %v", err)
	}
	products, total, err := svc.ListPublic(0, "", 1, 20)
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Fatalf("expected no public products, got %d", total)
	}
	if _, err := svc.GetAdminByID(10); err != nil {
		t.Fatalf("admin should still see product: %v", err)
	}
}

func TestProductDeleteRejectsPromotionReference(t *testing.T) {
	db, svc, _ := newProductTestService(t)
	product := createTestProduct(t, db, 10, "Empanada", "1200", true)
	promotion := createTestTemporaryPromotion(t, db, 20, "Combo", "2000", orderTestStart, orderTestStart.AddDate(0, 0, 7), true)
	if err := db.Model(&promotion).Association("Products").Append(&product); err != nil {
		t.Fatalf("link promotion product failed: %v", err)
	}

	if err := svc.Delete(10); !errors.Is(err, ErrProductInUse) {
		t.Fatalf("expected product in use, got %v", err)
	}
	if err := svc.Delete(404); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductUploadImageReplacesOld(t *testing.T) {
	db, svc, storage := newProductTestService(t)
	createTestProduct(t, db, 10, "Empanada", "1200", true)

	first, err := svc.UploadImage(10, &multipart.FileHeader{Filename: "a.png", Size: 10})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if first.ImageURL != "/uploads/product/a.png" {
		t.Fatalf("unexpected image url: %s", first.ImageURL)
	}
	if _, err := svc.UploadImage(10, &multipart.FileHeader{Filename: "b.png", Size: 10}); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	if deleted := storage.waitDeleted(t); deleted != "/uploads/product/a.png" {
		t.Fatalf("expected old image cleanup, got %s", deleted)
	}

	var stored models.Product
	if err := db.First(&stored, 10).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.ImageURL != "/uploads/product/b.png" {
		t.Fatalf("unexpected stored image: %s", stored.ImageURL)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	bebidas, err := svc.Create(CreateCategoryInput{Name: "Bebidas"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if _, err := svc.Create(CreateCategoryInput{Name: "bebidas"}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected duplicate name conflict, got %v", err)
	}
	if _, err := svc.Update(bebidas.ID, CreateCategoryInput{Name: "Comidas"}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected rename conflict, got %v", err)
	}
	inactive := false
	if _, err := svc.Update(bebidas.ID, CreateCategoryInput{Name: "Bebidas frías", IsActive: &inactive}); err != nil {
		t.Fatalf("update category failed: %v", err)
	}
	public, err := svc.ListPublic()
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if len(public) != 1 || public[0].Name != "Comidas" {
		t.Fatalf("unexpected public categories: %+v", public)
	}

	createTestProduct(t, db, 10, "Empanada", "1200", true)
	if err := svc.Delete(1); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}
	if err := svc.Delete(bebidas.ID); err != nil {
		t.Fatalf("delete empty category failed: %v", err)
	}
}
