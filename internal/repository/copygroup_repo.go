package repository

import (
	"errors"

	"github.com/prop-journal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCopyGroupNotFound = errors.New("copy group not found")
)

// CopyGroupRepository handles copy group data access
type CopyGroupRepository struct {
	db *gorm.DB
}

// NewCopyGroupRepository creates a new CopyGroupRepository
func NewCopyGroupRepository(db *gorm.DB) *CopyGroupRepository {
	return &CopyGroupRepository{db: db}
}

// Create creates a new copy group with its members
func (r *CopyGroupRepository) Create(group *models.CopyGroup) error {
	return r.db.Create(group).Error
}

// GetByID retrieves a copy group with members preloaded
func (r *CopyGroupRepository) GetByID(id uint) (*models.CopyGroup, error) {
	var group models.CopyGroup
	result := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("copy_members.id ASC")
	}).First(&group, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCopyGroupNotFound
		}
		return nil, result.Error
	}
	return &group, nil
}

// GetByUserID retrieves all copy groups for a user
func (r *CopyGroupRepository) GetByUserID(userID uint) ([]models.CopyGroup, error) {
	var groups []models.CopyGroup
	result := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("copy_members.id ASC")
	}).Where("user_id = ?", userID).Order("id ASC").Find(&groups)
	return groups, result.Error
}

// ListActiveCopyGroups retrieves active groups led by the given account, in a
// stable order. Member order is stable too; replication depends on both.
func (r *CopyGroupRepository) ListActiveCopyGroups(leaderAccountID uint) ([]models.CopyGroup, error) {
	var groups []models.CopyGroup
	result := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("copy_members.id ASC")
	}).Where("leader_account_id = ? AND is_active = ?", leaderAccountID, true).
		Order("id ASC").
		Find(&groups)
	return groups, result.Error
}

// Update saves a copy group and replaces its members
func (r *CopyGroupRepository) Update(group *models.CopyGroup) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("copy_group_id = ?", group.ID).Delete(&models.CopyMember{}).Error; err != nil {
			return err
		}
		return tx.Save(group).Error
	})
}

// Delete soft deletes a copy group
func (r *CopyGroupRepository) Delete(id uint) error {
	return r.db.Delete(&models.CopyGroup{}, id).Error
}
