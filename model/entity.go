package model

import "time"

// AppliedJobEntity records a terminal attempted listing. One row per apply
// URL; its presence blocks any future automatic retry.
type AppliedJobEntity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	URL       string    `gorm:"column:url;uniqueIndex;size:512"`
	ListingID string    `gorm:"column:listing_id;size:128"`
	Board     string    `gorm:"column:board;size:32"`
	Status    string    `gorm:"column:status;size:32"`
	Message   string    `gorm:"column:message;size:1024"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (AppliedJobEntity) TableName() string {
	return "applied_jobs"
}

// JobEntity mirrors a discovered listing in durable storage.
type JobEntity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	URL       string    `gorm:"column:url;uniqueIndex;size:512"`
	ListingID string    `gorm:"column:listing_id;size:128"`
	Board     string    `gorm:"column:board;size:32"`
	Title     string    `gorm:"column:title;size:256"`
	Company   string    `gorm:"column:company;size:256"`
	Location  string    `gorm:"column:location;size:256"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (JobEntity) TableName() string {
	return "jobs"
}
