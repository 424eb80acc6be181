package service

import (
	"errors"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"

	"gorm.io/gorm"
)

// UserFilter 定义用户筛选条件
type UserFilter struct {
	Role     string
	Search   string
	Disabled *bool
}

// UserService 处理用户管理相关的业务逻辑
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// GetUsers 获取用户列表，支持分页和筛选
func (s *UserService) GetUsers(page, pageSize int, filter UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := s.UserRepo.DB.Model(&model.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Disabled != nil {
		query = query.Where("disabled = ?", *filter.Disabled)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("id asc").Find(&users).Error
	return users, total, err
}

func (s *UserService) user(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return user, nil
}

// DisableUser 禁用/启用用户，被禁用的用户无法登录
func (s *UserService) DisableUser(id uint, disable bool) (*model.User, error) {
	user, err := s.user(id)
	if err != nil {
		return nil, err
	}
	user.Disabled = disable
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole 修改用户角色，新角色在下次登录签发的令牌中生效
func (s *UserService) SetRole(id uint, role model.UserRole) (*model.User, error) {
	if role != model.Student && role != model.Admin {
		return nil, util.ErrInvalidRole
	}
	user, err := s.user(id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
