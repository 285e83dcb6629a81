package services

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"store-backend-api/internal/catalog"
	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/gateway/mercadopago"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

// paymentService implements the PaymentService interface
type paymentService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	mp          *mercadopago.Client
	shipping    *melhorenvio.Client
	mirror      *catalog.Mirror
	validator   *validator.Validate
	logger      *logrus.Logger
}

// NewPaymentService creates a new payment service instance
func NewPaymentService(
	productRepo repositories.ProductRepository,
	orderRepo repositories.OrderRepository,
	mp *mercadopago.Client,
	shipping *melhorenvio.Client,
	mirror *catalog.Mirror,
	logger *logrus.Logger,
) PaymentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &paymentService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		mp:          mp,
		shipping:    shipping,
		mirror:      mirror,
		validator:   validator.New(),
		logger:      logger,
	}
}

// ProcessPayment runs the full checkout: freight validation, price audit,
// stock check, gateway charge, order persistence and stock decrement.
func (s *paymentService) ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	if req == nil {
		return nil, invalidf("payment request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidf("validation failed: %v", err)
	}
	if req.Installments < 1 {
		req.Installments = 1
	}
	cep, ok := models.NormalizeCEP(req.CEP)
	if !ok {
		return nil, invalidf("CEP inválido: %s", req.CEP)
	}
	req.CEP = cep

	// 0. Freight validation against the carrier quote
	freight, err := s.validateFreight(ctx, req)
	if err != nil {
		return nil, err
	}

	// 1. Price audit and stock check against the database
	subtotal, err := s.auditItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	expectedTotal := models.Round2(subtotal + models.Round2(req.Freight))
	sentTotal := models.Round2(req.TransactionAmount)
	if math.Abs(sentTotal-expectedTotal) > models.FreightTolerance {
		return nil, invalidf(
			"divergência de valores: front %.2f, back (subtotal %.2f + frete %.2f = %.2f)",
			sentTotal, subtotal, req.Freight, expectedTotal)
	}

	// The backend total is authoritative
	finalAmount := expectedTotal

	// 2. Charge through the gateway
	payment, err := s.charge(ctx, req, finalAmount)
	if err != nil {
		return nil, err
	}

	// 3. Persist order and items
	order, err := s.persistOrder(ctx, req, payment, finalAmount, freight)
	if err != nil {
		return nil, err
	}

	// 4. Decrement stock and refresh the catalog mirror
	s.decrementStock(ctx, req.Items)
	s.syncSoldProducts(ctx, req.Items)

	result := &ProcessPaymentResult{
		ID:              payment.ID.String(),
		Status:          payment.Status,
		StatusDetail:    payment.StatusDetail,
		OrderDBID:       order.ID,
		PaymentMethodID: req.PaymentMethodID,
	}
	switch {
	case mercadopago.IsPix(req.PaymentMethodID):
		td := payment.PointOfInteraction.TransactionData
		if td.QRCode != "" {
			result.QRCode = &td.QRCode
		}
		if td.QRCodeBase64 != "" {
			result.QRCodeBase64 = &td.QRCodeBase64
		}
		if td.TicketURL != "" {
			result.TicketURL = &td.TicketURL
		}
	case mercadopago.IsTicket(req.PaymentMethodID):
		if url := payment.TransactionDetails.ExternalResourceURL; url != "" {
			result.TicketURL = &url
		}
	}

	return result, nil
}

// validateFreight quotes a single default package with the summed item
// quantity and matches the client freight value against the carrier
// options, preferring the service hint.
func (s *paymentService) validateFreight(ctx context.Context, req *ProcessPaymentRequest) (*melhorenvio.QuoteOption, error) {
	totalQty := 0
	for _, item := range req.Items {
		totalQty += item.Quantity
	}

	packages := []melhorenvio.PackageInput{{
		Width:    models.DefaultPackageWidthCM,
		Height:   models.DefaultPackageHeightCM,
		Length:   models.DefaultPackageLengthCM,
		Weight:   models.DefaultPackageWeightKG,
		Quantity: totalQty,
	}}

	options, err := s.shipping.Quote(ctx, req.CEP, packages)
	if err != nil {
		return nil, gatewayErr("frete: não foi possível validar com a transportadora", err)
	}
	if len(options) == 0 {
		return nil, invalidf("frete: nenhuma opção de frete disponível para o CEP informado")
	}

	sentFreight := models.Round2(req.Freight)

	var chosen *melhorenvio.QuoteOption
	if req.FreightService != "" {
		for i := range options {
			if options[i].Service == req.FreightService {
				chosen = &options[i]
				break
			}
		}
		if chosen != nil && math.Abs(sentFreight-chosen.Price) > models.FreightTolerance {
			chosen = nil
		}
	}

	if chosen == nil {
		var byPrice []*melhorenvio.QuoteOption
		for i := range options {
			if math.Abs(sentFreight-options[i].Price) <= models.FreightTolerance {
				byPrice = append(byPrice, &options[i])
			}
		}
		switch {
		case len(byPrice) == 1:
			chosen = byPrice[0]
			s.logger.WithFields(logrus.Fields{
				"frete_enviado": sentFreight,
				"service":       chosen.Service,
			}).Info("Frete validado por preço (frete_service incorreto no frontend)")
		case len(byPrice) > 1:
			chosen = byPrice[0]
		default:
			return nil, invalidf("frete: valor enviado não confere com nenhuma opção da cotação. Recalcule o frete no checkout")
		}
	}

	return chosen, nil
}

// auditItems verifies stock per variant (with legacy stock-map fallback)
// and sums the database prices.
func (s *paymentService) auditItems(ctx context.Context, items []PaymentItem) (float64, error) {
	subtotal := 0.0

	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return 0, invalidf("produto ID %d não encontrado", item.ID)
			}
			return 0, fmt.Errorf("auditing product %d: %w", item.ID, err)
		}

		color := models.NormalizeOption(item.Color)
		size := models.NormalizeOption(item.Size)

		available := 0
		variant, err := s.productRepo.GetVariant(ctx, item.ID, color, size)
		switch {
		case err == nil:
			available = variant.StockQuantity
		case repositories.IsNotFound(err):
			// legacy stock map: requested size, then the default option
			if qty, ok := product.Stock[size]; ok {
				available = qty
			} else {
				available = product.Stock[models.DefaultVariantOption]
			}
		default:
			return 0, fmt.Errorf("checking variant stock for product %d: %w", item.ID, err)
		}

		if available < item.Quantity {
			return 0, invalidf(
				"o produto %q está fora de estoque ou a quantidade solicitada não está disponível. Disponível: %d, solicitado: %d",
				item.Name, available, item.Quantity)
		}

		price := 0.0
		if product.Price != nil {
			price = *product.Price
		}
		subtotal += price * float64(item.Quantity)
	}

	return models.Round2(subtotal), nil
}

// charge builds the gateway payload and creates the payment
func (s *paymentService) charge(ctx context.Context, req *ProcessPaymentRequest, amount float64) (*mercadopago.PaymentResponse, error) {
	payer := *req.Payer
	if payer.Address != nil {
		// the gateway rejects complement on the payer address
		addr := *payer.Address
		addr.Complement = ""
		payer.Address = &addr
	}

	payment := &mercadopago.PaymentRequest{
		TransactionAmount: amount,
		Description:       fmt.Sprintf("Pedido Loja - %s", req.Payer.Email),
		PaymentMethodID:   req.PaymentMethodID,
		Payer:             &payer,
	}

	switch {
	case mercadopago.IsPix(req.PaymentMethodID), mercadopago.IsTicket(req.PaymentMethodID):
		payment.Installments = 1
	default: // card
		if req.Token == "" {
			return nil, invalidf("token obrigatório para cartão")
		}
		payment.Token = req.Token
		payment.Installments = req.Installments
		payment.IssuerID = req.IssuerID
	}

	idempotencyKey := fmt.Sprintf("%s-%.2f-%s", req.UserID, amount, req.PaymentMethodID)
	response, err := s.mp.CreatePayment(ctx, payment, idempotencyKey)
	if err != nil {
		return nil, gatewayErr("pagamento recusado pelo gateway", err)
	}

	return response, nil
}

// persistOrder saves the order with the MP result and the canonical
// freight data from the carrier quote.
func (s *paymentService) persistOrder(ctx context.Context, req *ProcessPaymentRequest, payment *mercadopago.PaymentResponse, amount float64, freight *melhorenvio.QuoteOption) (*models.Order, error) {
	status := models.OrderStatus(payment.Status)
	if !models.IsValidOrderStatus(status) {
		status = models.OrderStatusPending
	}

	order := models.NewOrder(req.UserID, status, amount)
	order.PaymentMethod = &req.PaymentMethodID
	order.Installments = req.Installments
	order.Payer = req.Payer

	mpID := payment.ID.String()
	order.MPPaymentID = &mpID

	if freight.Service != "" {
		service := freight.Service
		order.ShippingService = &service
	}
	shippingAmount := freight.Price
	order.ShippingAmount = &shippingAmount

	if payment.DateOfExpiration != "" {
		exp := payment.DateOfExpiration
		order.PaymentExpiration = &exp
	}
	switch {
	case mercadopago.IsPix(req.PaymentMethodID):
		if qr := payment.PointOfInteraction.TransactionData.QRCode; qr != "" {
			order.PaymentCode = &qr
		}
	case mercadopago.IsTicket(req.PaymentMethodID):
		if url := payment.TransactionDetails.ExternalResourceURL; url != "" {
			order.PaymentURL = &url
		}
	}

	items := make([]*models.OrderItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		item := models.NewOrderItem(order.ID, reqItem.ID, reqItem.Name, reqItem.Quantity, reqItem.Price)
		item.ImageURL = reqItem.Image
		if reqItem.Color != "" {
			color := reqItem.Color
			item.Color = &color
		}
		if reqItem.Size != "" {
			size := reqItem.Size
			item.Size = &size
		}
		items = append(items, item)
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		return nil, wrapRepoErr("falha ao salvar pedido no banco", err)
	}

	return order, nil
}

// decrementStock lowers variant stock for each sold item, falling back to
// the legacy per-size stock map. Stock errors are logged, never fatal:
// the payment already happened.
func (s *paymentService) decrementStock(ctx context.Context, items []PaymentItem) {
	for _, item := range items {
		color := models.NormalizeOption(item.Color)
		size := models.NormalizeOption(item.Size)

		variant, err := s.productRepo.GetVariant(ctx, item.ID, color, size)
		if err == nil {
			newQty := variant.StockQuantity - item.Quantity
			if newQty < 0 {
				newQty = 0
			}
			if err := s.productRepo.UpdateVariantStock(ctx, variant.ID, newQty); err != nil {
				s.logger.WithError(err).WithField("product_id", item.ID).Error("Failed to decrement variant stock")
				continue
			}
			total, err := s.productRepo.SumVariantStock(ctx, item.ID)
			if err == nil {
				if err := s.productRepo.SetQuantity(ctx, item.ID, total); err != nil {
					s.logger.WithError(err).WithField("product_id", item.ID).Error("Failed to update product quantity")
				}
			}
			continue
		}
		if !repositories.IsNotFound(err) {
			s.logger.WithError(err).WithField("product_id", item.ID).Error("Failed to load variant for stock decrement")
			continue
		}

		product, err := s.productRepo.GetByID(ctx, item.ID)
		if err != nil {
			s.logger.WithError(err).WithField("product_id", item.ID).Error("Failed to load product for stock decrement")
			continue
		}

		stock := product.Stock
		if stock == nil {
			stock = map[string]int{}
		}
		if _, ok := stock[size]; ok {
			stock[size] -= item.Quantity
			if stock[size] < 0 {
				stock[size] = 0
			}
		} else if _, ok := stock[models.DefaultVariantOption]; ok {
			stock[models.DefaultVariantOption] -= item.Quantity
			if stock[models.DefaultVariantOption] < 0 {
				stock[models.DefaultVariantOption] = 0
			}
		}

		total := 0
		for _, qty := range stock {
			total += qty
		}
		if err := s.productRepo.SetStockMap(ctx, item.ID, stock, total); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ID).Error("Failed to update legacy stock map")
		}
	}
}

// syncSoldProducts refreshes the catalog mirror for each distinct sold
// product. Mirror failures are logged only.
func (s *paymentService) syncSoldProducts(ctx context.Context, items []PaymentItem) {
	if s.mirror == nil {
		return
	}

	seen := map[int64]struct{}{}
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}

		product, err := s.productRepo.GetByID(ctx, item.ID)
		if err != nil {
			s.logger.WithError(err).WithField("product_id", item.ID).Error("Failed to load product for mirror sync")
			continue
		}
		variants, err := s.productRepo.GetVariants(ctx, item.ID)
		if err == nil {
			product.Variants = variants
		}
		if err := s.mirror.SetProduct(ctx, product); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ID).Error("Catalog mirror sync failed")
		}
	}
}
