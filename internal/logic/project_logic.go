package logic

import (
	"errors"
	"fmt"

	"github.com/Testicode234/developer-2/internal/auth"
	"github.com/Testicode234/developer-2/internal/errs"
	"github.com/Testicode234/developer-2/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 项目生命周期业务逻辑
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// CreateProject 项目方发布项目
func (p *ProjectLogic) CreateProject(actor auth.Actor, title, description string) (*model.Project, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", errs.ErrInvalidInput)
	}

	project := model.Project{
		Title:       title,
		Description: description,
		ClientID:    actor.ID,
		Status:      model.ProjectStatusOpen,
	}
	if err := p.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// GetProject 查询项目
func (p *ProjectLogic) GetProject(projectID uint) (*model.Project, error) {
	var project model.Project
	if err := p.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, errs.ErrNotFound)
		}
		return nil, err
	}
	return &project, nil
}

// AssignDeveloper 指派开发者并把项目推进到进行中，open -> in_progress
func (p *ProjectLogic) AssignDeveloper(actor auth.Actor, projectID, developerID uint) error {
	project, err := p.GetProject(projectID)
	if err != nil {
		return err
	}

	if !auth.IsProjectOwner(actor, project) {
		return fmt.Errorf("actor %d is not the project owner: %w", actor.ID, errs.ErrForbidden)
	}

	var developer model.User
	if err := p.db.First(&developer, developerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("developer %d: %w", developerID, errs.ErrNotFound)
		}
		return err
	}
	if developer.Role != model.RoleDeveloper {
		return fmt.Errorf("user %d is not a developer: %w", developerID, errs.ErrInvalidInput)
	}

	res := p.db.Model(&model.Project{}).
		Where("id = ? AND status = ?", projectID, model.ProjectStatusOpen).
		Updates(map[string]interface{}{
			"developer_id": developerID,
			"status":       model.ProjectStatusInProgress,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project is not open: %w", errs.ErrInvalidState)
	}
	return nil
}

// CompleteProject 项目方确认项目完成，in_progress -> completed
func (p *ProjectLogic) CompleteProject(actor auth.Actor, projectID uint) error {
	project, err := p.GetProject(projectID)
	if err != nil {
		return err
	}

	if !auth.IsProjectOwner(actor, project) {
		return fmt.Errorf("actor %d is not the project owner: %w", actor.ID, errs.ErrForbidden)
	}

	res := p.db.Model(&model.Project{}).
		Where("id = ? AND status = ?", projectID, model.ProjectStatusInProgress).
		Update("status", model.ProjectStatusCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project is not in progress: %w", errs.ErrInvalidState)
	}
	return nil
}

// CancelProject 取消项目并级联清理里程碑
//
// 已放款的里程碑钱已经动了，保留用于对账，只清理未支付的。
func (p *ProjectLogic) CancelProject(actor auth.Actor, projectID uint) error {
	project, err := p.GetProject(projectID)
	if err != nil {
		return err
	}

	if !auth.IsProjectOwner(actor, project) {
		return fmt.Errorf("actor %d is not the project owner: %w", actor.ID, errs.ErrForbidden)
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Project{}).
			Where("id = ? AND status IN ?", projectID,
				[]model.ProjectStatus{model.ProjectStatusOpen, model.ProjectStatusInProgress}).
			Update("status", model.ProjectStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("project cannot be cancelled from its current status: %w", errs.ErrInvalidState)
		}

		return tx.Where("project_id = ? AND status <> ?", projectID, model.MilestoneStatusPaid).
			Delete(&model.Milestone{}).Error
	})
}
