package auth

import (
	"testing"

	"github.com/Testicode234/developer-2/internal/model"
)

func TestGuards(t *testing.T) {
	devID := uint(2)
	project := &model.Project{ClientID: 1, DeveloperID: &devID}

	t.Run("project owner", func(t *testing.T) {
		if !IsProjectOwner(Actor{ID: 1, Role: model.RoleClient}, project) {
			t.Error("expected client to be the project owner")
		}
		if IsProjectOwner(Actor{ID: 2, Role: model.RoleDeveloper}, project) {
			t.Error("developer must not be the project owner")
		}
		if IsProjectOwner(Actor{ID: 1, Role: model.RoleClient}, nil) {
			t.Error("nil project has no owner")
		}
	})

	t.Run("administrator", func(t *testing.T) {
		if !IsAdministrator(Actor{ID: 9, Role: model.RoleAdmin}) {
			t.Error("expected admin role to pass")
		}
		if IsAdministrator(Actor{ID: 1, Role: model.RoleClient}) {
			t.Error("client must not be an administrator")
		}
	})

	t.Run("participant", func(t *testing.T) {
		if !IsParticipant(Actor{ID: 1}, project) {
			t.Error("client is a participant")
		}
		if !IsParticipant(Actor{ID: 2}, project) {
			t.Error("assigned developer is a participant")
		}
		if IsParticipant(Actor{ID: 3}, project) {
			t.Error("stranger is not a participant")
		}
		unassigned := &model.Project{ClientID: 1}
		if IsParticipant(Actor{ID: 2}, unassigned) {
			t.Error("no developer assigned yet")
		}
	})
}
