package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stylShop/business/personalize"
	"stylShop/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CREATE TABLE public.affinity_profiles (
//     user_id     BIGINT PRIMARY KEY,
//     profile     JSONB NOT NULL,
//     updated_at  TIMESTAMPTZ DEFAULT NOW()
// );

type affinityProfileRow struct {
	UserID    uint                                            `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Profile   datatypes.JSONType[personalize.AffinityProfile] `gorm:"column:profile;type:jsonb;not null"`
	UpdatedAt time.Time                                       `gorm:"column:updated_at"`
}

func (affinityProfileRow) TableName() string {
	return "affinity_profiles"
}

type AffinityProfileRepository struct {
	DB *gorm.DB
}

var _ personalize.ProfileRepository = (*AffinityProfileRepository)(nil)

func NewAffinityProfileRepository(db *gorm.DB) *AffinityProfileRepository {
	return &AffinityProfileRepository{DB: db}
}

func (r *AffinityProfileRepository) GetProfile(ctx context.Context, userID uint) (*personalize.AffinityProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var row affinityProfileRow
	err := r.DB.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query affinity_profiles: %w", err)
	}

	profile := row.Profile.Data()
	return &profile, nil
}

func (r *AffinityProfileRepository) SaveProfile(ctx context.Context, userID uint, profile *personalize.AffinityProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if profile == nil {
		return errors.New("nil profile")
	}

	row := affinityProfileRow{
		UserID:    userID,
		Profile:   datatypes.NewJSONType(*profile),
		UpdatedAt: profile.UpdatedAt,
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert affinity_profiles: %w", err)
	}

	return nil
}

// DeleteProfile removes the stored profile. Missing rows are not an error.
func (r *AffinityProfileRepository) DeleteProfile(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Delete(&affinityProfileRow{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete affinity profile: %w", err)
	}
	return nil
}

// Migrate creates the tables this package writes to.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&affinityProfileRow{}, &domain.Product{})
}
