package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	repo "shop/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartItemRepo  repo.CartItemRepository
	variationRepo repo.VariationRepository
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	variationRepo repo.VariationRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo:  cartItemRepo,
		variationRepo: variationRepo,
	}
}

// price は現在のバリエーション価格（割引があれば割引価格）を返す。
// 注文スナップショットと違ってカートは常にライブ価格。
type CartItemResponse struct {
	ID                 int64  `json:"id"`
	ProductVariationID int64  `json:"product_variation_id"`
	SKU                string `json:"sku"`
	Price              int64  `json:"price"`
	Quantity           int64  `json:"quantity"`
	Subtotal           int64  `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	ProductVariationID int64
	Quantity           int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート一覧を返す。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカートに追加（同一バリエーションは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductVariationID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_variation_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// バリエーションチェック（公開のみ）
	v, err := u.variationRepo.FindByID(ctx, in.ProductVariationID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_variation_id")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !v.Status {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_variation_id")
	}

	if _, err := u.cartItemRepo.UpsertByUserAndVariation(ctx, userID, in.ProductVariationID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量変更。0を渡すと明細を削除する。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の明細は「存在しない扱い」
	if item.UserID != userID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if in.Quantity == 0 {
		if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.buildCartResponse(ctx, userID)
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細削除
func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.UserID != userID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.cartItemRepo.DeleteByUserID(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ユーザーの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		v, err := u.variationRepo.FindByID(ctx, it.ProductVariationID)
		if err != nil {
			continue
		}
		if !v.Status {
			continue
		}

		unit := v.UnitPrice()
		respItems = append(respItems, CartItemResponse{
			ID:                 it.ID,
			ProductVariationID: it.ProductVariationID,
			SKU:                v.SKU,
			Price:              unit,
			Quantity:           it.Quantity,
			Subtotal:           unit * it.Quantity,
		})

		total += unit * it.Quantity
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
