package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mailtriage/internal/model"
)

// EmailRepository stores inbox messages.
type EmailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// List returns emails newest first.
func (r *EmailRepository) List(ctx context.Context) ([]model.Email, error) {
	var emails []model.Email
	if err := r.db.WithContext(ctx).Order("date DESC, id ASC").Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return emails, nil
}

// FindByID returns gorm.ErrRecordNotFound (unwrapped) when the email does not exist.
func (r *EmailRepository) FindByID(ctx context.Context, id string) (*model.Email, error) {
	var email model.Email
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&email).Error; err != nil {
		return nil, err
	}
	return &email, nil
}

// MarkRead sets the read flag. It leaves an already-read email untouched.
func (r *EmailRepository) MarkRead(ctx context.Context, id string) error {
	email, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if email.Read {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Email{}).Where("id = ?", id).
		UpdateColumn("read", true).Error; err != nil {
		return fmt.Errorf("mark email read: %w", err)
	}
	return nil
}

// Search filters the inbox with model.Email.Matches, keeping List's order.
func (r *EmailRepository) Search(ctx context.Context, query string) ([]model.Email, error) {
	emails, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Email, 0, len(emails))
	for _, e := range emails {
		if e.Matches(query) {
			out = append(out, e)
		}
	}
	return out, nil
}

// InsertNew stores emails whose ids are not known yet and returns how many were added.
// Existing rows, and with them their local read state, are left unchanged.
func (r *EmailRepository) InsertNew(ctx context.Context, emails []model.Email) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&emails)
	if res.Error != nil {
		return 0, fmt.Errorf("insert emails: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *EmailRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Email{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	return n, nil
}
