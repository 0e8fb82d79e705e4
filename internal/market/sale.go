package market

import (
	"context"
	"errors"
	"strings"

	"local_marketplace/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SaleResult reports a completed sale broadcast
type SaleResult struct {
	BuyersNotified    int `json:"buyers_notified"`
	PendingSaleCredit int `json:"pending_sale_credit"`
}

// BroadcastSale notifies every buyer in the seller's locality and spends one sale credit.
// Locality is the seller's current user pincode. With no matching buyers nothing is
// written and the credit is kept.
func (s *Service) BroadcastSale(ctx context.Context, sellerID uint, itemsText string) (*SaleResult, error) {
	items := strings.TrimSpace(itemsText)
	if items == "" {
		return nil, ErrEmptySaleItems
	}
	details, err := s.SellerDetails(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if details.PendingSaleCredit <= 0 {
		return nil, ErrNoSaleCredit
	}
	pincode, ok := s.Directory.GetPincode(ctx, sellerID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if pincode == "" {
		return nil, ErrNoPincode
	}
	buyers := s.Matcher.MatchBuyers(ctx, pincode, sellerID)
	if len(buyers) == 0 {
		return nil, ErrNoBuyersMatched
	}

	result := &SaleResult{}
	err = s.inTx(ctx, func(sc txScope) error {
		if err := sc.ledger.ConsumeSaleCredit(ctx, sellerID); err != nil {
			return err
		}
		n, err := sc.notifier.NotifySale(ctx, sellerID, buyers, items)
		if err != nil {
			return err
		}
		result.BuyersNotified = n
		remaining, err := sc.ledger.saleCredit(ctx, sellerID)
		result.PendingSaleCredit = remaining
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNoSaleCredit) {
			logrus.WithFields(logrus.Fields{
				"seller_id": sellerID,
				"error":     err.Error(),
			}).Error("Sale broadcast failed")
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"seller_id":       sellerID,
		"pincode":         pincode,
		"buyers_notified": result.BuyersNotified,
	}).Info("Sale broadcast sent")
	return result, nil
}

// SellerDetails loads the shop of sellerID
func (s *Service) SellerDetails(ctx context.Context, sellerID uint) (*domain.SellerDetails, error) {
	var d domain.SellerDetails
	err := s.db.WithContext(ctx).Where("user_id = ?", sellerID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSellerNotFound
	}
	if err != nil {
		return nil, wrapStore("load seller details", err)
	}
	return &d, nil
}

// saleCredit reads the remaining sale credit of sellerID
func (l *Ledger) saleCredit(ctx context.Context, sellerID uint) (int, error) {
	var d domain.SellerDetails
	err := l.db.WithContext(ctx).Select("id", "pending_sale_credit").Where("user_id = ?", sellerID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrSellerNotFound
	}
	if err != nil {
		return 0, wrapStore("load sale credit", err)
	}
	return d.PendingSaleCredit, nil
}
