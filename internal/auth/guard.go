package auth

import (
	"github.com/Testicode234/developer-2/internal/model"
)

// Actor 已认证的操作者，由上游身份服务签发的会话令牌解析而来。
// 本服务完全信任其中的身份与角色，不做任何凭证校验。
type Actor struct {
	ID   uint
	Role model.Role
}

// IsAdministrator 是否具备管理员能力
func IsAdministrator(actor Actor) bool {
	return actor.Role == model.RoleAdmin
}

// IsProjectOwner 是否为项目的所有者（项目方）
func IsProjectOwner(actor Actor, project *model.Project) bool {
	return project != nil && actor.ID == project.ClientID
}

// IsParticipant 是否为项目参与方（项目方或承接的开发者）
func IsParticipant(actor Actor, project *model.Project) bool {
	if project == nil {
		return false
	}
	if actor.ID == project.ClientID {
		return true
	}
	return project.DeveloperID != nil && actor.ID == *project.DeveloperID
}
