package service

import (
	"errors"

	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/repository"
)

var (
	ErrFollowerIsLeader = errors.New("a copy group follower cannot be its own leader")
	ErrNoMembers        = errors.New("a copy group needs at least one member")
)

// CopyGroupService handles copy group CRUD. The follower-is-not-the-leader
// invariant is enforced here, at edit time, so the replication engine can
// trust its groups.
type CopyGroupService struct {
	groupRepo   *repository.CopyGroupRepository
	accountRepo *repository.AccountRepository
}

// NewCopyGroupService creates a new CopyGroupService
func NewCopyGroupService(
	groupRepo *repository.CopyGroupRepository,
	accountRepo *repository.AccountRepository,
) *CopyGroupService {
	return &CopyGroupService{
		groupRepo:   groupRepo,
		accountRepo: accountRepo,
	}
}

// CopyMemberRequest is one follower entry in a group request
type CopyMemberRequest struct {
	FollowerAccountID uint    `json:"follower_account_id" binding:"required"`
	RiskMultiplier    float64 `json:"risk_multiplier" binding:"omitempty,gte=0"`
}

// CreateCopyGroupRequest represents the create copy group request
type CreateCopyGroupRequest struct {
	Name            string              `json:"name" binding:"max=100"`
	LeaderAccountID uint                `json:"leader_account_id" binding:"required"`
	IsActive        *bool               `json:"is_active"`
	Members         []CopyMemberRequest `json:"members" binding:"required,dive"`
}

func (s *CopyGroupService) validateMembers(userID, leaderAccountID uint, members []CopyMemberRequest) ([]models.CopyMember, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}

	out := make([]models.CopyMember, 0, len(members))
	for _, m := range members {
		if m.FollowerAccountID == leaderAccountID {
			return nil, ErrFollowerIsLeader
		}
		if _, err := s.accountRepo.GetByIDAndUserID(m.FollowerAccountID, userID); err != nil {
			return nil, err
		}
		mult := m.RiskMultiplier
		if mult == 0 {
			mult = 1
		}
		out = append(out, models.CopyMember{
			FollowerAccountID: m.FollowerAccountID,
			RiskMultiplier:    mult,
		})
	}
	return out, nil
}

// CreateCopyGroup creates a copy group with its members
func (s *CopyGroupService) CreateCopyGroup(userID uint, req *CreateCopyGroupRequest) (*models.CopyGroup, error) {
	if _, err := s.accountRepo.GetByIDAndUserID(req.LeaderAccountID, userID); err != nil {
		return nil, err
	}

	members, err := s.validateMembers(userID, req.LeaderAccountID, req.Members)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	group := &models.CopyGroup{
		UserID:          userID,
		Name:            req.Name,
		LeaderAccountID: req.LeaderAccountID,
		IsActive:        active,
		Members:         members,
	}

	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	return group, nil
}

// GetCopyGroups lists a user's copy groups
func (s *CopyGroupService) GetCopyGroups(userID uint) ([]models.CopyGroup, error) {
	return s.groupRepo.GetByUserID(userID)
}

// UpdateCopyGroupRequest represents the update copy group request
type UpdateCopyGroupRequest struct {
	Name     *string             `json:"name" binding:"omitempty,max=100"`
	IsActive *bool               `json:"is_active"`
	Members  []CopyMemberRequest `json:"members" binding:"omitempty,dive"`
}

// UpdateCopyGroup updates a copy group and optionally replaces its members
func (s *CopyGroupService) UpdateCopyGroup(userID, groupID uint, req *UpdateCopyGroupRequest) (*models.CopyGroup, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group.UserID != userID {
		return nil, repository.ErrCopyGroupNotFound
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}
	if req.Members != nil {
		members, err := s.validateMembers(userID, group.LeaderAccountID, req.Members)
		if err != nil {
			return nil, err
		}
		for i := range members {
			members[i].CopyGroupID = group.ID
		}
		group.Members = members
	}

	if err := s.groupRepo.Update(group); err != nil {
		return nil, err
	}

	return group, nil
}

// DeleteCopyGroup deletes a copy group
func (s *CopyGroupService) DeleteCopyGroup(userID, groupID uint) error {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return err
	}
	if group.UserID != userID {
		return repository.ErrCopyGroupNotFound
	}
	return s.groupRepo.Delete(groupID)
}
