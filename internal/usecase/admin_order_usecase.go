package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

type AdminUpdateOrderStatusInput struct {
	Status string
	Notes  string
}

type AdminUpdateOrderInput struct {
	ShippingAddress string
	ShippingPhone   string
	ShippingName    string
	PaymentMethod   string
	PaymentStatus   string
	Notes           string
}

// 注文一覧・検索
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderSearchFilter) ([]OrderOutput, int64, error) {
	if f.Page < 1 {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.IsOrderStatus(f.Status) {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, 0, err
	}
	return outs, total, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// UpdateStatus は遷移表に従ってステータスを進める。
// cancelled への遷移だけ在庫戻しと返金反映の副作用を持つ。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := strings.TrimSpace(in.Status)
	if !model.IsOrderStatus(newStatus) {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	target := model.OrderStatus(newStatus)

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//遷移表に無い組み合わせは拒否（遷移元と遷移先を明示する）
		if !model.CanTransition(o.Status, target) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot transition from %s to %s", o.Status, target))
		}

		values := map[string]any{"status": target}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			values["notes"] = notes
		}

		if target == model.OrderStatusCancelled {
			//在庫戻し
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Variations().IncreaseStock(ctx, it.ProductVariationID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}

			//支払い済みなら返金扱い
			if o.PaymentStatus == model.PaymentStatusPaid {
				values["payment_status"] = model.PaymentStatusRefunded
			}
		}

		if err := r.Orders().UpdateFields(ctx, orderID, values); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ
		if err := u.writeAudit(ctx, actorAdminID, model.AuditActionUpdateOrderStatus, orderID,
			map[string]any{"status": o.Status},
			map[string]any{"status": target},
		); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

// UpdateOrder は配送先・支払い方法などの部分更新。空フィールドは変更しない。
func (u *AdminOrderUsecase) UpdateOrder(ctx context.Context, actorAdminID int64, orderID int64, in AdminUpdateOrderInput) (OrderOutput, error) {
	if actorAdminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	values := map[string]any{}
	if s := strings.TrimSpace(in.ShippingAddress); s != "" {
		if len(s) > 255 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_address")
		}
		values["shipping_address"] = s
	}
	if s := strings.TrimSpace(in.ShippingPhone); s != "" {
		if len(s) > 20 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_phone")
		}
		values["shipping_phone"] = s
	}
	if s := strings.TrimSpace(in.ShippingName); s != "" {
		if len(s) > 255 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_name")
		}
		values["shipping_name"] = s
	}
	if s := strings.TrimSpace(in.PaymentMethod); s != "" {
		values["payment_method"] = s
	}
	if s := strings.TrimSpace(in.PaymentStatus); s != "" {
		//管理者が直接設定できるのは pending/paid/refunded のみ
		switch model.PaymentStatus(s) {
		case model.PaymentStatusPending, model.PaymentStatusPaid, model.PaymentStatusRefunded:
		default:
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_status")
		}
		values["payment_status"] = s
	}
	if s := strings.TrimSpace(in.Notes); s != "" {
		values["notes"] = s
	}

	if len(values) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().UpdateFields(ctx, orderID, values); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before := map[string]any{
			"shipping_address": o.ShippingAddress,
			"shipping_phone":   o.ShippingPhone,
			"shipping_name":    o.ShippingName,
			"payment_method":   o.PaymentMethod,
			"payment_status":   o.PaymentStatus,
			"notes":            o.Notes,
		}
		if err := u.writeAudit(ctx, actorAdminID, model.AuditActionUpdateOrder, orderID, before, values); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(updated, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// Delete は注文の物理削除。
// delivered以外は在庫を戻す（届いた商品の在庫は再計上しない）。
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorAdminID int64, orderID int64) error {
	if actorAdminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if o.Status != model.OrderStatusDelivered {
			for _, it := range items {
				if err := r.Variations().IncreaseStock(ctx, it.ProductVariationID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.writeAudit(ctx, actorAdminID, model.AuditActionDeleteOrder, orderID,
			map[string]any{"order_number": o.OrderNumber, "status": o.Status},
			map[string]any{},
		); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

func (u *AdminOrderUsecase) writeAudit(ctx context.Context, actorID int64, action model.AuditAction, orderID int64, before map[string]any, after map[string]any) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return err
	}

	return u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    time.Now(),
	})
}

// 期間パラメータでtime.Timeが必要なら、handlerでtime.Parseしてここに入れる
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
