// 创建演示用户脚本
//
// 服务本身不提供注册接口，用户由运营侧离线创建。
// 此脚本写入几个不同等级的演示账号，方便本地联调发音分析接口。
//
// 用法: go run scripts/seed_users.go
package main

import (
	"log"
	"mandarin_edu_backend/internal/config"
	"mandarin_edu_backend/internal/model"
	"mandarin_edu_backend/pkg/database"
	"mandarin_edu_backend/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	users := []model.User{
		{
			Email:       "beginner@example.com",
			Username:    "xiaoming",
			DisplayName: "小明",
			Level:       model.HSK1,
			Preferences: datatypes.JSON([]byte(`{"dailyGoal":5,"notifications":true}`)),
		},
		{
			Email:       "intermediate@example.com",
			Username:    "lily",
			DisplayName: "Lily",
			Level:       model.HSK4,
			Preferences: datatypes.JSON([]byte(`{"dailyGoal":10,"notifications":false}`)),
		},
		{
			Email:       "advanced@example.com",
			Username:    "laowang",
			DisplayName: "老王",
			Level:       model.HSK6,
		},
	}

	for i := range users {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&users[i]).Error; err != nil {
			log.Fatalf("创建用户 %s 失败: %v", users[i].Username, err)
		}
	}

	log.Println("演示用户就绪")
}
