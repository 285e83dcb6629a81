package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-backend-api/internal/gateway/mercadopago"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

const voucherCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// orderService implements the OrderService interface
type orderService struct {
	orderRepo   repositories.OrderRepository
	profileRepo repositories.ProfileRepository
	voucherRepo repositories.VoucherRepository
	refundRepo  repositories.RefundRepository
	mp          *mercadopago.Client
	validator   *validator.Validate
	logger      *logrus.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service instance
func NewOrderService(
	orderRepo repositories.OrderRepository,
	profileRepo repositories.ProfileRepository,
	voucherRepo repositories.VoucherRepository,
	refundRepo repositories.RefundRepository,
	mp *mercadopago.Client,
	logger *logrus.Logger,
) OrderService {
	if logger == nil {
		logger = logrus.New()
	}
	return &orderService{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		voucherRepo: voucherRepo,
		refundRepo:  refundRepo,
		mp:          mp,
		validator:   validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// GetOrderDetail returns the customer's own order with items and refunds
func (s *orderService) GetOrderDetail(ctx context.Context, orderID, userID string) (*OrderDetail, error) {
	if orderID == "" || userID == "" {
		return nil, invalidf("order ID and user ID are required")
	}

	order, err := s.orderRepo.GetWithItems(ctx, orderID, userID)
	if err != nil {
		return nil, wrapRepoErr("pedido não encontrado", err)
	}

	refunds, err := s.refundRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, wrapRepoErr("falha ao listar reembolsos do pedido", err)
	}
	if refunds == nil {
		refunds = []*models.OrderRefund{}
	}

	return &OrderDetail{Order: order, RefundRequests: refunds}, nil
}

// ListOrdersByCustomer lists the customer's orders newest first
func (s *orderService) ListOrdersByCustomer(ctx context.Context, userID string, page, limit int) (*OrderList, error) {
	if userID == "" {
		return nil, invalidf("user ID is required")
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, wrapRepoErr("falha ao listar pedidos", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	return &OrderList{Data: orders, Total: total, Page: page, Limit: limit}, nil
}

// ListAllOrders lists every order; the requester must be an admin
func (s *orderService) ListAllOrders(ctx context.Context, adminUserID string, page, limit int) (*OrderList, error) {
	role, err := s.profileRepo.GetRole(ctx, adminUserID)
	if err != nil {
		return nil, wrapRepoErr("falha ao verificar permissões", err)
	}
	if role != models.RoleAdmin {
		return nil, forbiddenf("apenas usuários com role admin podem listar todos os pedidos")
	}

	orders, total, err := s.orderRepo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, wrapRepoErr("falha ao listar pedidos", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	return &OrderList{Data: orders, Total: total, Page: page, Limit: limit}, nil
}

// RequestCancelOrRefund registers a customer cancel/refund request within
// the allowed window after order completion.
func (s *orderService) RequestCancelOrRefund(ctx context.Context, orderID, userID string, req *CancelRequest) (*CancelResult, error) {
	if req == nil {
		return nil, invalidf("cancel request cannot be nil")
	}

	order, err := s.orderRepo.GetWithItems(ctx, orderID, userID)
	if err != nil {
		return nil, wrapRepoErr("pedido não encontrado", err)
	}

	completedAt := order.CompletedAt()
	if completedAt == nil {
		return nil, invalidf("pedido ainda não está concluído; cancelamento disponível após conclusão")
	}
	cutoff := s.now().AddDate(0, 0, -models.CustomerCancelDays)
	if completedAt.Before(cutoff) {
		return nil, invalidf(
			"solicitação de cancelamento/reembolso permitida apenas até %d dias após a conclusão do pedido",
			models.CustomerCancelDays)
	}

	amount, itemIDs, err := s.resolveRefundScope(ctx, order, req.Total, req.OrderItemIDs)
	if err != nil {
		return nil, err
	}

	refund := models.NewOrderRefund(orderID, models.RefundRequestCustomer, amount, itemIDs)
	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, wrapRepoErr("falha ao registrar solicitação de reembolso", err)
	}

	return &CancelResult{
		Message:         "Solicitação de cancelamento/reembolso registrada",
		RefundRequestID: refund.ID,
		OrderID:         orderID,
		Amount:          amount,
		Status:          string(models.RefundStatusPending),
	}, nil
}

// BackofficeCancelAndRefund cancels items or the whole order and pays the
// refund through the gateway or as a voucher.
func (s *orderService) BackofficeCancelAndRefund(ctx context.Context, orderID string, req *BackofficeCancelRequest) (*BackofficeCancelResult, error) {
	if req == nil {
		return nil, invalidf("cancel request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidf("validation failed: %v", err)
	}
	if !req.FullCancel && len(req.CancelItemIDs) == 0 {
		return nil, invalidf("informe cancel_item_ids ou full_cancel=true")
	}

	order, err := s.orderRepo.GetWithItems(ctx, orderID, "")
	if err != nil {
		return nil, wrapRepoErr("pedido não encontrado", err)
	}

	amount, itemIDs, err := s.resolveRefundScope(ctx, order, req.FullCancel, req.CancelItemIDs)
	if err != nil {
		return nil, err
	}

	refund := models.NewOrderRefund(orderID, models.RefundRequestBackoffice, amount, itemIDs)
	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, wrapRepoErr("falha ao registrar reembolso", err)
	}

	result := &BackofficeCancelResult{
		OrderID:         orderID,
		RefundRequestID: refund.ID,
		Amount:          amount,
		Message:         "Cancelamento e reembolso processados",
		Status:          string(models.RefundStatusRefunded),
	}

	switch models.RefundMethod(req.RefundMethod) {
	case models.RefundMethodMercadoPago:
		if order.MPPaymentID == nil || *order.MPPaymentID == "" {
			return nil, invalidf("pedido sem mp_payment_id; reembolso MP não disponível")
		}
		mpResp, err := s.mp.Refund(ctx, *order.MPPaymentID, &amount, uuid.New().String())
		if err != nil {
			return nil, gatewayErr("reembolso recusado pelo gateway", err)
		}
		mpRefundID := mpResp.ID.String()
		method := models.RefundMethodMercadoPago
		refund.Status = models.RefundStatusRefunded
		refund.RefundMethod = &method
		refund.MPRefundID = &mpRefundID
		result.MPRefundID = &mpRefundID
	case models.RefundMethodVoucher:
		voucher, err := s.CreateVoucher(ctx, amount, &orderID, models.DefaultVoucherValidityDays)
		if err != nil {
			return nil, err
		}
		method := models.RefundMethodVoucher
		refund.Status = models.RefundStatusRefunded
		refund.RefundMethod = &method
		refund.VoucherID = &voucher.ID
		result.Voucher = voucher
	default:
		return nil, invalidf("refund_method deve ser 'mp' ou 'voucher'")
	}

	refund.UpdateTimestamp()
	if err := s.refundRepo.Update(ctx, refund); err != nil {
		return nil, wrapRepoErr("falha ao atualizar reembolso", err)
	}

	if req.FullCancel {
		if _, err := s.orderRepo.UpdateStatus(ctx, orderID, models.OrderStatusCancelled); err != nil {
			return nil, wrapRepoErr("falha ao cancelar pedido", err)
		}
	}

	return result, nil
}

// UpdateOrderStatus moves an order through the status lifecycle, enforcing
// the valid transitions.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, invalidf("status inválido: %s", status)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID, "")
	if err != nil {
		return nil, wrapRepoErr("pedido não encontrado", err)
	}

	if !order.CanTransitionTo(status) {
		return nil, invalidf("transição de status inválida: de %s para %s", order.Status, status)
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, wrapRepoErr("falha ao atualizar status do pedido", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	}).Info("Status do pedido atualizado")

	return updated, nil
}

// CreateVoucher issues a voucher with a unique code
func (s *orderService) CreateVoucher(ctx context.Context, amount float64, orderID *string, validDays int) (*models.Voucher, error) {
	if amount <= 0 {
		return nil, invalidf("valor do voucher deve ser positivo")
	}
	if validDays <= 0 {
		validDays = models.DefaultVoucherValidityDays
	}

	code, err := s.uniqueVoucherCode(ctx)
	if err != nil {
		return nil, err
	}

	voucher := models.NewVoucher(code, models.Round2(amount), orderID)
	voucher.ValidUntil = s.now().AddDate(0, 0, validDays)
	if err := s.voucherRepo.Create(ctx, voucher); err != nil {
		return nil, wrapRepoErr("falha ao criar voucher", err)
	}

	return voucher, nil
}

// DeleteOrder removes an order. Items and refunds are dropped by the
// schema cascade; linked vouchers keep existing with a null order link.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return invalidf("order ID is required")
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return wrapRepoErr("falha ao remover pedido", err)
	}

	return nil
}

// resolveRefundScope computes the refunded amount and item IDs for a full
// or partial cancel.
func (s *orderService) resolveRefundScope(ctx context.Context, order *models.Order, full bool, itemIDs []string) (float64, []string, error) {
	if full {
		ids := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ID)
		}
		return order.TotalAmount, ids, nil
	}

	if len(itemIDs) == 0 {
		return 0, nil, invalidf("informe os itens a cancelar")
	}

	items, err := s.orderRepo.GetItemsByIDs(ctx, order.ID, itemIDs)
	if err != nil {
		return 0, nil, wrapRepoErr("falha ao buscar itens do pedido", err)
	}
	if len(items) != len(itemIDs) {
		return 0, nil, invalidf("um ou mais itens não pertencem a este pedido")
	}

	amount := 0.0
	ids := make([]string, 0, len(items))
	for _, item := range items {
		amount += item.Subtotal()
		ids = append(ids, item.ID)
	}

	return models.Round2(amount), ids, nil
}

// uniqueVoucherCode generates a 5-char alphanumeric code not yet in use
func (s *orderService) uniqueVoucherCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		code, err := randomCode(models.VoucherCodeLength)
		if err != nil {
			return "", err
		}
		_, err = s.voucherRepo.GetByCode(ctx, code)
		if repositories.IsNotFound(err) {
			return code, nil
		}
		if err != nil {
			return "", wrapRepoErr("falha ao verificar código de voucher", err)
		}
	}
	return "", invalidf("não foi possível gerar código de voucher único")
}

func randomCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(voucherCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = voucherCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
