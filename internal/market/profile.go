package market

import (
	"context"
	"errors"
	"strings"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChooseRole records whether the user is a seller. The choice is made once.
func (s *Service) ChooseRole(ctx context.Context, userID uint, isSeller bool) (*domain.User, error) {
	res := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND is_seller IS NULL", userID).
		Update("is_seller", isSeller)
	if res.Error != nil {
		return nil, wrapStore("choose role", res.Error)
	}
	u, err := s.Directory.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && u.Seller() != isSeller {
		return nil, ErrRoleAlreadySet
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "is_seller": isSeller}).Info("Role chosen")
	return u, nil
}

// ShopInput carries the editable shop fields
type ShopInput struct {
	ShopName    string
	ShopAddress string
	Notes       string
}

// SetupSeller creates or updates the seller's shop. The pincode is copied from the
// user profile; sale credits are granted only when the shop is first created.
func (s *Service) SetupSeller(ctx context.Context, sellerID uint, in ShopInput) (*domain.SellerDetails, error) {
	seller, err := s.Directory.GetUser(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.Seller() {
		return nil, ErrNotSeller
	}
	row := domain.SellerDetails{
		UserID:            seller.ID,
		ShopName:          strings.TrimSpace(in.ShopName),
		ShopAddress:       strings.TrimSpace(in.ShopAddress),
		Notes:             strings.TrimSpace(in.Notes),
		Category:          domain.CategoryMedical,
		Pincode:           utils.NormalizePincode(seller.Pincode),
		PendingSaleCredit: s.opts.InitialSaleCredits,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"shop_name", "shop_address", "notes", "pincode", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, wrapStore("save seller details", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": seller.ID, "shop_name": row.ShopName}).Info("Seller details saved")
	return s.SellerDetails(ctx, seller.ID)
}

// UpdatePincode changes the user's locality and keeps the shop copy in step
func (s *Service) UpdatePincode(ctx context.Context, userID uint, pincode string) error {
	p := utils.NormalizePincode(pincode)
	if !utils.IsValidPincode(p) {
		return ErrInvalidPincode
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Directory.WithTx(tx).GetUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Update("pincode", p).Error; err != nil {
			return err
		}
		return tx.Model(&domain.SellerDetails{}).Where("user_id = ?", userID).Update("pincode", p).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return wrapStore("update pincode", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "pincode": p}).Info("Pincode updated")
	return nil
}

// Profile is a user's own view of their account
type Profile struct {
	User    domain.User           `json:"user"`
	Credits Balance               `json:"credits"`
	Shop    *domain.SellerDetails `json:"shop,omitempty"`
}

// GetProfile returns the user, their credit balance and, for sellers, their shop
func (s *Service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	u, err := s.Directory.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		User:    *u,
		Credits: Balance{Available: u.AvailableRequestCount, Used: u.UsedCreditCount},
	}
	if u.Seller() {
		shop, err := s.SellerDetails(ctx, userID)
		if err != nil && !errors.Is(err, ErrSellerNotFound) {
			return nil, err
		}
		p.Shop = shop
	}
	return p, nil
}
