package services

import (
	"context"
	"errors"
	"fmt"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"
	"cardkeep/internal/repositories"

	"go.uber.org/zap"
)

// SharingService publishes read-only links to a user's collection.
type SharingService struct {
	userRepo  repositories.UserRepository
	shareRepo repositories.ShareRepository
}

// NewSharingService creates a new SharingService.
func NewSharingService(userRepo repositories.UserRepository, shareRepo repositories.ShareRepository) *SharingService {
	return &SharingService{
		userRepo:  userRepo,
		shareRepo: shareRepo,
	}
}

// CreateOrRefresh returns the user's share id, creating the record on first
// use and refreshing the stored owner name afterwards.
func (s *SharingService) CreateOrRefresh(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	record := &models.ShareRecord{
		ShareID:   repositories.DeriveShareID(user.Email),
		Email:     user.Email,
		OwnerName: user.DisplayName(),
	}
	if err := s.shareRepo.Upsert(ctx, record); err != nil {
		return "", err
	}
	return record.ShareID, nil
}

// Resolve returns the live collection behind shareID. The collection is read
// at resolve time, so later saves show through an existing link.
func (s *SharingService) Resolve(ctx context.Context, shareID string) (shared *models.SharedCollection, err error) {
	defer func() {
		label := outcome(err)
		if errors.Is(err, apperr.ErrNotFound) {
			label = "not_found"
		}
		ShareResolutions.WithLabelValues(label).Inc()
	}()

	record, err := s.shareRepo.FindByID(ctx, shareID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, record.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			zap.L().Warn("Share record points at a missing user", zap.String("shareID", shareID))
			return nil, fmt.Errorf("shared collection %s: %w", shareID, apperr.ErrNotFound)
		}
		return nil, err
	}

	ownerName := record.OwnerName
	if ownerName == "" {
		ownerName = models.DefaultDisplayName
	}
	cards := []models.CardRef(user.Collection)
	if cards == nil {
		cards = []models.CardRef{}
	}
	return &models.SharedCollection{OwnerName: ownerName, Cards: cards}, nil
}
