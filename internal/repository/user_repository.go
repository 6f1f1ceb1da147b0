package repository

import (
	"mandarin_edu_backend/internal/model"
	"math"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// ApplyCompletedAttempt 将一次完成的尝试计入用户统计：
// n' = n+1，avg' = round((avg*n + score)/n', 1位小数)。
// 单条 UPDATE 在数据库内完成读改写，并发提交不会互相覆盖。
func (r *UserRepository) ApplyCompletedAttempt(userID uint, score float64) error {
	res := r.DB.Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"average_score":  gorm.Expr("round((average_score * total_attempts + ?) / (total_attempts + 1), 1)", score),
			"total_attempts": gorm.Expr("total_attempts + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Round1 四舍五入保留一位小数
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
