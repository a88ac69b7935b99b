package entity

import (
	"time"
)

// Project 文档项目，记录问卷原文，文档见 Document
type Project struct {
	ID                string                 `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            string                 `json:"user_id" gorm:"type:varchar(128);index;not null"`
	Name              string                 `json:"name" gorm:"type:varchar(255);not null"`
	Description       string                 `json:"description" gorm:"type:text"`
	QuestionnaireData *QuestionnaireResponse `json:"questionnaire_data" gorm:"type:jsonb;serializer:json"`
	CreatedAt         time.Time              `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time              `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 由问卷创建项目
func NewProject(id, userID string, q QuestionnaireResponse) *Project {
	now := time.Now()
	return &Project{
		ID:                id,
		UserID:            userID,
		Name:              q.ProjectName,
		Description:       q.ProjectDescription,
		QuestionnaireData: &q,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
