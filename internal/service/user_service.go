package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

type ProfileUpdateRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (s *UserService) GetByID(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole 角色变更仅限管理员显式操作
func (s *UserService) SetRole(actorID, targetID uint, role model.UserRole) (*model.User, error) {
	actor, err := s.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.Admin {
		return nil, util.ErrPermissionDenied
	}

	target, err := s.GetByID(targetID)
	if err != nil {
		return nil, err
	}

	target.Role = role
	if err := s.UserRepo.Update(target); err != nil {
		return nil, err
	}
	return target, nil
}
