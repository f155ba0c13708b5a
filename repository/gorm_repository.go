package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"autoapply/model"
)

// GormJobRepository backs the ledgers with MySQL. Enabled when the storage
// driver is set to mysql; file storage remains the default.
type GormJobRepository struct {
	db *gorm.DB
}

func NewGormJobRepository(db *gorm.DB) (*GormJobRepository, error) {
	if err := db.AutoMigrate(&model.JobEntity{}, &model.AppliedJobEntity{}); err != nil {
		return nil, fmt.Errorf("migrate job tables: %w", err)
	}
	return &GormJobRepository{db: db}, nil
}

func (r *GormJobRepository) Upsert(listing model.JobListing) error {
	url := model.NormalizeURL(listing.URL)

	var existing model.JobEntity
	result := r.db.Where("url = ?", url).First(&existing)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	now := time.Now()
	if result.Error == gorm.ErrRecordNotFound {
		entity := model.JobEntity{
			URL:       url,
			ListingID: listing.ID,
			Board:     listing.Board,
			Title:     listing.Title,
			Company:   listing.Company,
			Location:  listing.Location,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return r.db.Create(&entity).Error
	}

	existing.Title = listing.Title
	existing.Company = listing.Company
	existing.Location = listing.Location
	existing.UpdatedAt = now
	return r.db.Save(&existing).Error
}

func (r *GormJobRepository) MarkApplied(listing model.JobListing, result model.ApplyResult) error {
	if !result.Status.Attempted() {
		return nil
	}
	url := model.NormalizeURL(listing.URL)

	var existing model.AppliedJobEntity
	lookup := r.db.Where("url = ?", url).First(&existing)
	if lookup.Error != nil && lookup.Error != gorm.ErrRecordNotFound {
		return lookup.Error
	}
	if lookup.Error == nil {
		existing.Status = string(result.Status)
		existing.Message = result.Message
		return r.db.Save(&existing).Error
	}

	entity := model.AppliedJobEntity{
		URL:       url,
		ListingID: listing.ID,
		Board:     listing.Board,
		Status:    string(result.Status),
		Message:   result.Message,
		AppliedAt: time.Now(),
	}
	return r.db.Create(&entity).Error
}

func (r *GormJobRepository) HasApplied(url string) (bool, error) {
	var entity model.AppliedJobEntity
	result := r.db.Where("url = ?", model.NormalizeURL(url)).First(&entity)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, result.Error
	}
	return true, nil
}
